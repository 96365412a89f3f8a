package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// fallbackPeers keeps a minimal roster per industry so classification
// outages degrade to a usable (if thin) peer set instead of failing
// the whole analysis.
var fallbackPeers = map[string][]string{
	"银行":   {"600036", "601166", "601398", "601939", "600000", "601288"},
	"非银金融": {"600030", "601318", "601628", "600837", "601688"},
	"食品饮料": {"600519", "000858", "600600", "603288", "000568"},
	"医药生物": {"600276", "000661", "300760", "600196", "002422"},
	"电子":   {"002415", "002475", "603501", "002241", "000725"},
	"计算机":  {"000938", "600588", "002230", "600845", "688111"},
	"电力设备": {"300750", "300274", "601012", "002594", "600406"},
	"房地产":  {"000002", "600048", "001979", "600606"},
	"汽车":   {"600104", "000859", "601633", "000625"},
	"家用电器": {"000651", "000333", "600690", "002032"},
	"有色金属": {"601899", "002460", "600111", "603993"},
	"化工":   {"600309", "600346", "002648", "600426"},
	"机械设备": {"600031", "000157", "002008", "601100"},
	"公用事业": {"600900", "600011", "600886", "600027"},
	"交通运输": {"002352", "601111", "600009", "601816"},
	"煤炭":   {"601088", "601225", "600188", "601898"},
	"钢铁":   {"600019", "000898", "000709", "600507"},
}

// IndustryLabel implements Classifier via the quote snapshot; the
// label rides the long classification cache window.
func (c *Client) IndustryLabel(ctx context.Context, code string) (string, error) {
	key := "industry_" + code
	return cached(ctx, c, key, "classification", func(ctx context.Context) (string, error) {
		q, err := c.quote(ctx, code)
		if err != nil {
			return "", err
		}
		return q.Industry, nil
	})
}

// Peers implements Classifier: the member list of a level-1 industry.
// When the upstream roster cannot be fetched, a static fallback roster
// is used so scoring can proceed in degraded mode.
func (c *Client) Peers(ctx context.Context, industry string) ([]string, error) {
	key := "peers_" + industry
	peers, err := cached(ctx, c, key, "peers", func(ctx context.Context) ([]string, error) {
		url := fmt.Sprintf("%s?reportName=RPT_INDUSTRY_STOCKLIST&columns=SECURITY_CODE,INDUSTRY_NAME"+
			"&filter=(INDUSTRY_NAME=%%22%s%%22)&pageSize=500&pageNumber=1",
			dataCenter, industry)
		body, err := c.getJSON(ctx, "peers", url)
		if err != nil {
			return nil, err
		}
		var codes []string
		for _, row := range gjson.GetBytes(body, "result.data").Array() {
			if code := row.Get("SECURITY_CODE").String(); len(code) == 6 {
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			return nil, fmt.Errorf("empty roster for industry %q", industry)
		}
		return codes, nil
	})
	if err != nil {
		if fallback, ok := fallbackPeers[industry]; ok {
			log.Warn().Str("industry", industry).Err(err).
				Msg("peer roster unavailable, using fallback roster")
			return fallback, nil
		}
		return nil, err
	}
	return peers, nil
}
