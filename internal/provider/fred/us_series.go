package fred

// usDollarisationSeries are US monetary and financial series that matter
// for a dollarised economy: Ecuador uses the USD, so US monetary policy is
// effectively Ecuador's monetary policy. None of these are available from
// the IMF or World Bank sources.
var usDollarisationSeries = map[string]string{
	// Fed policy
	"FEDFUNDS": "US Fed Funds Rate",
	"DFEDTARU": "US Fed Funds Upper Target",
	"DFEDTARL": "US Fed Funds Lower Target",

	// US Treasury yields (Ecuador borrows in USD)
	"DGS2":   "US 2Y Treasury Yield",
	"DGS5":   "US 5Y Treasury Yield",
	"DGS10":  "US 10Y Treasury Yield",
	"DGS30":  "US 30Y Treasury Yield",
	"T10Y2Y": "US 10Y-2Y Spread",

	// US inflation (directly impacts Ecuador's price level)
	"CPIAUCSL": "US CPI (All Urban Consumers)",
	"CPILFESL": "US Core CPI (ex Food & Energy)",
	"PCEPILFE": "US Core PCE Price Index",

	// USD strength (affects Ecuador's trade competitiveness)
	"DTWEXBGS":   "USD Trade-Weighted Index (Broad Goods & Services)",
	"DTWEXEMEGS": "USD Trade-Weighted Index (EME Goods & Services)",

	// US financial conditions
	"NFCI":             "Chicago Fed Financial Conditions Index",
	"STLFSI2":          "STL Fed Financial Stress Index",
	"BAMLH0A0HYM2":     "US High Yield OAS",
	"BAMLHE00EHYIOAS":  "US Emerging Markets Corporate OAS",
	"BAMLEMCLLCRPIOAS": "US LatAm Corporate OAS",

	// Oil prices (Ecuador is oil-dependent)
	"DCOILWTICO":   "WTI Crude Oil Price",
	"DCOILBRENTEU": "Brent Crude Oil Price",

	// Commodity indices
	"PALLFNFINDEXM": "All Commodity Price Index (IMF)",

	// EM risk / capital flows
	"TEDRATE": "TED Spread",
	"VIXCLS":  "CBOE VIX",
}
