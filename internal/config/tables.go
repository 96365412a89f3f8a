package config

import (
	"sort"
	"strings"
	"time"
)

// Cache lifetimes per data category. Daily market data turns over every
// trading day; classification and fundamentals move with reporting
// cycles; macro series update weekly at most.
var CacheTTLs = map[string]time.Duration{
	"prices":          24 * time.Hour,
	"turnover":        24 * time.Hour,
	"valuation":       24 * time.Hour,
	"st_status":       24 * time.Hour,
	"basic_info":      24 * time.Hour,
	"market_cap":      24 * time.Hour,
	"classification":  90 * 24 * time.Hour,
	"peers":           90 * 24 * time.Hour,
	"dividend":        7 * 24 * time.Hour,
	"macro":           7 * 24 * time.Hour,
	"market_env":      7 * 24 * time.Hour,
	"valuation_range": 30 * 24 * time.Hour,
	"net_profit_yoy":  30 * 24 * time.Hour,
	"net_profit_2y":   180 * 24 * time.Hour,
	"op_cashflow_3y":  180 * 24 * time.Hour,
	"financials":      90 * 24 * time.Hour,
}

// TTLFor returns the lifetime for a data category, defaulting to the
// general financials lifetime for unknown categories.
func TTLFor(category string) time.Duration {
	if ttl, ok := CacheTTLs[category]; ok {
		return ttl
	}
	return CacheTTLs["financials"]
}

// DefaultIndustry is the catch-all category for labels that match no
// keyword.
const DefaultIndustry = "综合"

// industryKeywords maps raw classifier labels and common sub-industry
// names onto the Shenwan level-1 category set the scoring tables key on.
var industryKeywords = map[string]string{
	// 金融
	"银行": "银行",
	"保险": "非银金融", "证券": "非银金融", "多元金融": "非银金融",
	"保险及其他": "非银金融", "证券及其他": "非银金融",
	// 房地产
	"房地产": "房地产", "房地产开发": "房地产", "园区开发": "房地产",
	// 医药生物
	"医药生物": "医药生物", "医疗器械": "医药生物", "生物制品": "医药生物",
	"化学制药": "医药生物", "中药": "医药生物", "医药商业": "医药生物",
	"生物制药": "医药生物",
	// 电子
	"电子": "电子", "半导体": "电子", "集成电路": "电子", "消费电子": "电子",
	"电子制造": "电子", "半导体及元件": "电子", "光学光电子": "电子",
	"电子化学品": "电子", "其他电子": "电子",
	// 计算机
	"计算机": "计算机", "软件开发": "计算机", "互联网": "计算机",
	"计算机设备": "计算机", "IT服务": "计算机", "软件服务": "计算机",
	"互联网服务": "计算机", "云计算": "计算机", "大数据": "计算机",
	"人工智能": "计算机",
	// 通信
	"通信": "通信", "通信设备": "通信", "电信运营": "通信", "5G": "通信",
	"网络设备": "通信", "光通信": "通信", "卫星导航": "通信",
	// 食品饮料
	"食品饮料": "食品饮料", "白酒": "食品饮料", "啤酒": "食品饮料",
	"乳制品": "食品饮料", "酿酒": "食品饮料", "酿酒行业": "食品饮料",
	"食品加工": "食品饮料", "肉制品": "食品饮料", "调味品": "食品饮料",
	"软饮料": "食品饮料", "休闲食品": "食品饮料", "食品综合": "食品饮料",
	// 农林牧渔
	"农林牧渔": "农林牧渔", "种植业": "农林牧渔", "渔业": "农林牧渔",
	"畜牧业": "农林牧渔", "农药兽药": "农林牧渔", "农产品加工": "农林牧渔",
	"农业综合": "农林牧渔", "饲料": "农林牧渔",
	// 化工
	"化工": "化工", "基础化工": "化工", "化学原料": "化工", "化学制品": "化工",
	"精细化工": "化工", "化肥": "化工", "农药": "化工", "塑料": "化工",
	"橡胶": "化工", "化学纤维": "化工", "日用化学": "化工",
	// 石油石化
	"石油石化": "石油石化", "石油化工": "石油石化", "石油加工": "石油石化",
	"油气服务": "石油石化", "天然气": "石油石化", "成品油": "石油石化",
	// 煤炭
	"煤炭": "煤炭", "煤炭加工": "煤炭", "焦炭": "煤炭", "煤化工": "煤炭",
	// 有色金属
	"有色金属": "有色金属", "工业金属": "有色金属", "贵金属": "有色金属",
	"稀有金属": "有色金属", "金属新材料": "有色金属", "小金属": "有色金属",
	"铜": "有色金属", "铝": "有色金属", "锂": "有色金属", "钴": "有色金属",
	"镍": "有色金属",
	// 钢铁
	"钢铁": "钢铁", "普钢": "钢铁", "特钢": "钢铁", "钢铁加工": "钢铁",
	// 机械设备
	"机械设备": "机械设备", "通用机械": "机械设备", "专用设备": "机械设备",
	"运输设备": "机械设备", "工程机械": "机械设备", "自动化设备": "机械设备",
	"机床工具": "机械设备", "仪器仪表": "机械设备", "机械零部件": "机械设备",
	"机器人": "机械设备",
	// 国防军工
	"国防军工": "国防军工", "航天装备": "国防军工", "航空装备": "国防军工",
	"地面兵装": "国防军工", "船舶制造": "国防军工", "军工电子": "国防军工",
	"军工材料": "国防军工",
	// 汽车
	"汽车": "汽车", "乘用车": "汽车", "商用车": "汽车", "汽车零部件": "汽车",
	"新能源汽车": "汽车", "汽车服务": "汽车", "汽车电子": "汽车", "摩托车": "汽车",
	// 电力设备
	"电力设备": "电力设备", "电气设备": "电力设备", "新能源": "电力设备",
	"光伏": "电力设备", "风电": "电力设备", "电池": "电力设备",
	"电网设备": "电力设备", "新能源发电设备": "电力设备", "其他电源设备": "电力设备",
	"光伏设备": "电力设备", "风电设备": "电力设备", "储能设备": "电力设备",
	// 家用电器
	"家用电器": "家用电器", "家电": "家用电器", "白色家电": "家用电器",
	"黑色家电": "家用电器", "厨房电器": "家用电器", "小家电": "家用电器",
	"其他家电": "家用电器", "照明设备": "家用电器",
	// 纺织服装
	"纺织服装": "纺织服装", "纺织制造": "纺织服装", "服装家纺": "纺织服装",
	"服饰": "纺织服装", "家纺": "纺织服装", "面料": "纺织服装", "辅料": "纺织服装",
	// 轻工制造
	"轻工制造": "轻工制造", "造纸": "轻工制造", "包装印刷": "轻工制造",
	"家具": "轻工制造", "家用轻工": "轻工制造", "文娱用品": "轻工制造",
	"其他轻工制造": "轻工制造",
	// 交通运输
	"交通运输": "交通运输", "铁路运输": "交通运输", "公路运输": "交通运输",
	"水路运输": "交通运输", "航空运输": "交通运输", "物流": "交通运输",
	"港口": "交通运输", "机场": "交通运输", "航运": "交通运输", "快递": "交通运输",
	// 商贸零售
	"商贸零售": "商贸零售", "零售": "商贸零售", "百货零售": "商贸零售",
	"专业零售": "商贸零售", "电商零售": "商贸零售", "商业贸易": "商贸零售",
	"贸易": "商贸零售", "超市": "商贸零售", "连锁经营": "商贸零售",
	// 社会服务
	"社会服务": "社会服务", "旅游综合": "社会服务", "景点": "社会服务",
	"酒店餐饮": "社会服务", "教育": "社会服务", "医疗服务": "社会服务",
	"美容服务": "社会服务", "体育": "社会服务", "文化娱乐": "社会服务",
	"专业服务": "社会服务",
	// 传媒
	"传媒": "传媒", "出版": "传媒", "广播电视": "传媒", "影视院线": "传媒",
	"游戏": "传媒", "广告营销": "传媒", "数字媒体": "传媒", "网络媒体": "传媒",
	"动漫": "传媒",
	// 美容护理
	"美容护理": "美容护理", "化妆品": "美容护理", "个人护理": "美容护理",
	"医美": "美容护理", "日化": "美容护理", "护肤品": "美容护理", "彩妆": "美容护理",
	// 环保
	"环保": "环保", "环境治理": "环保", "环保设备": "环保", "固废处理": "环保",
	"大气治理": "环保", "土壤修复": "环保", "环境监测": "环保",
	// 公用事业
	"公用事业": "公用事业", "电力": "公用事业", "燃气": "公用事业",
	"水务": "公用事业", "环保工程": "公用事业", "垃圾处理": "公用事业",
	"供热": "公用事业",
	// 建筑材料
	"建筑材料": "建筑材料", "水泥": "建筑材料", "玻璃": "建筑材料",
	"建材": "建筑材料", "新材料": "建筑材料", "砖瓦建材": "建筑材料",
	"耐火材料": "建筑材料",
	// 建筑装饰
	"建筑装饰": "建筑装饰", "房屋建设": "建筑装饰", "基建工程": "建筑装饰",
	"装修装饰": "建筑装饰", "园林工程": "建筑装饰", "国际工程": "建筑装饰",
	// 采掘
	"采掘": "采掘", "石油开采": "采掘", "天然气开采": "采掘", "煤炭开采": "采掘",
	"金属矿采选": "采掘", "非金属矿采选": "采掘",
	// 综合
	"综合": "综合", "综合类": "综合", "多元化经营": "综合",
}

// classifyKeys holds the keyword set ordered longest-first so substring
// matching is deterministic and prefers the most specific label.
var classifyKeys = func() []string {
	keys := make([]string, 0, len(industryKeywords))
	for k := range industryKeywords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ClassifyIndustry maps a raw classifier label to its level-1 category,
// by exact match first and substring match second. Unmatched labels
// fall into the catch-all category.
func ClassifyIndustry(rawLabel string) string {
	label := strings.TrimSpace(rawLabel)
	if label == "" {
		return DefaultIndustry
	}
	if cat, ok := industryKeywords[label]; ok {
		return cat
	}
	for _, key := range classifyKeys {
		if strings.Contains(label, key) {
			return industryKeywords[key]
		}
	}
	return DefaultIndustry
}

// CapGroup classifies an instrument by circulating market cap and
// carries that group's benchmark daily turnover and RSI width factor.
type CapGroup struct {
	Name string
	// MinCap is the group floor in 1e8 CNY of circulating cap.
	MinCap float64
	// BenchmarkTurnoverPct is the expected daily turnover, in percent.
	BenchmarkTurnoverPct float64
	// RSISigmaFactor widens the momentum score bell for smaller caps.
	RSISigmaFactor float64
}

// capGroups is ordered largest cap first; classification takes the
// first group whose floor the cap clears.
var capGroups = []CapGroup{
	{Name: "特大盘", MinCap: 2000, BenchmarkTurnoverPct: 0.35, RSISigmaFactor: 1.0},
	{Name: "超大盘", MinCap: 1000, BenchmarkTurnoverPct: 0.65, RSISigmaFactor: 1.0},
	{Name: "大盘", MinCap: 500, BenchmarkTurnoverPct: 1.00, RSISigmaFactor: 1.0},
	{Name: "中盘", MinCap: 200, BenchmarkTurnoverPct: 1.50, RSISigmaFactor: 16.0 / 15.0},
	{Name: "小盘", MinCap: 50, BenchmarkTurnoverPct: 2.30, RSISigmaFactor: 17.0 / 15.0},
	{Name: "微小盘A", MinCap: 10, BenchmarkTurnoverPct: 4.00, RSISigmaFactor: 17.0 / 15.0},
	{Name: "微小盘B", MinCap: 0, BenchmarkTurnoverPct: 10.00, RSISigmaFactor: 17.0 / 15.0},
}

// CapGroupFor classifies a circulating market cap (1e8 CNY).
func CapGroupFor(circulatingCap float64) CapGroup {
	for _, g := range capGroups {
		if circulatingCap >= g.MinCap {
			return g
		}
	}
	return capGroups[len(capGroups)-1]
}

// turnoverIndustryFactor scales the cap-group turnover benchmark by how
// actively an industry typically trades.
var turnoverIndustryFactor = map[string]float64{
	"银行": 0.5, "非银金融": 0.7,
	"公用事业": 0.6, "交通运输": 0.6, "建筑装饰": 0.6, "建筑材料": 0.6,
	"食品饮料": 1.0, "医药生物": 1.0, "家用电器": 0.9, "房地产": 0.9,
	"农林牧渔": 1.0, "汽车": 1.0, "机械设备": 1.0,
	"电子": 1.4, "计算机": 1.5, "通信": 1.4, "传媒": 1.4,
	"化工": 1.2, "电力设备": 1.3,
}

// TurnoverFactor returns the industry turnover factor, 1.0 when the
// industry carries no entry.
func TurnoverFactor(industry string) float64 {
	if f, ok := turnoverIndustryFactor[industry]; ok {
		return f
	}
	return 1.0
}

// IndustryType buckets industries by how their valuations should be
// weighted.
type IndustryType string

const (
	IndustryGrowth   IndustryType = "成长型"
	IndustryValue    IndustryType = "价值型"
	IndustryCyclical IndustryType = "周期型"
)

var industryTypeMap = func() map[string]IndustryType {
	m := make(map[string]IndustryType)
	for _, ind := range []string{"计算机", "电子", "通信", "医药生物", "电力设备", "国防军工", "传媒", "环保"} {
		m[ind] = IndustryGrowth
	}
	for _, ind := range []string{"银行", "非银金融", "食品饮料", "公用事业", "交通运输", "石油石化", "煤炭", "钢铁", "建筑材料", "社会服务", "商贸零售", "综合"} {
		m[ind] = IndustryValue
	}
	for _, ind := range []string{"有色金属", "化工", "机械设备", "汽车", "家用电器", "轻工制造", "纺织服装", "建筑装饰", "农林牧渔", "采掘", "房地产"} {
		m[ind] = IndustryCyclical
	}
	return m
}()

// TypeOf returns the valuation type of an industry, defaulting to value.
func TypeOf(industry string) IndustryType {
	if t, ok := industryTypeMap[industry]; ok {
		return t
	}
	return IndustryValue
}

// ValuationWeights are the per-metric weights of the valuation engine.
type ValuationWeights struct {
	PE       float64
	PB       float64
	PS       float64
	Dividend float64
}

var valuationWeightsByType = map[IndustryType]ValuationWeights{
	IndustryGrowth:   {PE: 0.35, PB: 0.25, PS: 0.30, Dividend: 0.10},
	IndustryValue:    {PE: 0.30, PB: 0.25, PS: 0.15, Dividend: 0.30},
	IndustryCyclical: {PE: 0.25, PB: 0.35, PS: 0.25, Dividend: 0.15},
}

// ValuationWeightsFor returns the metric weights for an industry.
func ValuationWeightsFor(industry string) ValuationWeights {
	return valuationWeightsByType[TypeOf(industry)]
}

// industryLeaders lists the two benchmark names per industry whose fair
// valuation ranges get widened.
var industryLeaders = map[string][]string{
	"计算机": {"000938", "600588"}, "电子": {"002415", "002475"},
	"通信": {"000063", "600498"}, "传媒": {"300413", "002027"},
	"医药生物": {"600276", "000661"}, "国防军工": {"601989", "600760"},
	"电力设备": {"300750", "300274"}, "环保": {"300070", "002340"},
	"银行": {"600036", "601166"}, "非银金融": {"600030", "601318"},
	"食品饮料": {"600519", "000858"}, "农林牧渔": {"002714", "300498"},
	"公用事业": {"600900", "600011"}, "交通运输": {"002352", "601111"},
	"房地产": {"000002", "600048"}, "商贸零售": {"002024", "601933"},
	"社会服务": {"601888", "300144"}, "石油石化": {"601857", "600028"},
	"美容护理": {"603605", "300957"}, "综合": {"601088", "600058"},
	"有色金属": {"601899", "002460"}, "化工": {"600309", "600346"},
	"钢铁": {"600019", "000898"}, "煤炭": {"601088", "601225"},
	"建筑材料": {"000786", "002233"}, "建筑装饰": {"601668", "601186"},
	"机械设备": {"600031", "000157"}, "汽车": {"600104", "000859"},
	"家用电器": {"000651", "000333"}, "轻工制造": {"002078", "002572"},
	"纺织服装": {"600398", "600177"},
}

// IsIndustryLeader reports whether a code is one of its industry's
// benchmark names.
func IsIndustryLeader(industry, code string) bool {
	for _, c := range industryLeaders[industry] {
		if c == code {
			return true
		}
	}
	return false
}

// industryCoefficient scales cash-flow quality thresholds by industry
// cyclicality and leverage.
var industryCoefficient = map[string]float64{
	"煤炭": 0.85, "石油石化": 0.85, "有色金属": 0.85, "钢铁": 0.85,
	"化工": 0.85, "建筑材料": 0.85, "采掘": 0.85,
	"建筑装饰": 0.80, "房地产": 0.80,
	"交通运输": 0.85,
	"汽车": 0.90, "机械设备": 0.90,
	"商贸零售": 0.95, "社会服务": 0.95,
	"银行": 0.88, "非银金融": 0.82,
	"电子": 1.05, "计算机": 1.05, "通信": 1.05, "传媒": 1.05, "电力设备": 1.05,
	"食品饮料": 1.06, "医药生物": 1.06,
	"纺织服装": 1.02, "公用事业": 0.95, "农林牧渔": 1.00,
	"美容护理": 1.04, "家用电器": 1.03, "轻工制造": 1.00,
	"国防军工": 0.98, "环保": 0.98, "综合": 1.00,
}

// Sub-industry refinements override the category-level coefficient when
// the raw classifier label is specific enough.
var subIndustryCoefficient = map[string]float64{
	// 医药生物
	"化学制药": 1.06, "生物制品": 1.06, "医疗器械": 1.06, "医疗服务": 1.06,
	"中药": 1.02, "医药商业": 1.02,
	// 电力设备
	"光伏设备": 1.07, "风电设备": 1.07, "电池": 1.07,
	"电网设备": 0.97, "其他电源设备": 0.97,
	// 家用电器
	"白色家电": 0.98, "黑色家电": 0.98,
	"厨房电器": 1.03, "小家电": 1.03, "其他家电": 1.03, "照明设备": 0.95,
}

// IndustryCoefficient returns the cash-flow adjustment coefficient,
// refined by sub-industry label where one applies, 1.0 otherwise.
func IndustryCoefficient(industry, rawLabel string) float64 {
	if c, ok := subIndustryCoefficient[strings.TrimSpace(rawLabel)]; ok {
		return c
	}
	if c, ok := industryCoefficient[industry]; ok {
		return c
	}
	return 1.0
}

// Industries returns the full level-1 category set, sorted.
func Industries() []string {
	seen := make(map[string]bool)
	for _, cat := range industryKeywords {
		seen[cat] = true
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
