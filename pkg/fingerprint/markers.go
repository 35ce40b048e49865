package fingerprint

// automationMarkers are lower-cased substrings that identify a client
// signature as a tool, scripted HTTP client, headless driver, or crawler.
// A single match is treated as a declared bot, not a heuristic guess.
var automationMarkers = []string{
	// command-line and scripted HTTP clients
	"curl/",
	"wget/",
	"httpie",
	"python-requests",
	"python-urllib",
	"aiohttp",
	"go-http-client",
	"java/",
	"okhttp",
	"libwww-perl",
	"node-fetch",
	"axios/",
	"postmanruntime",
	"insomnia",

	// headless browsers and automation drivers
	"headlesschrome",
	"phantomjs",
	"selenium",
	"webdriver",
	"puppeteer",
	"playwright",
	"electron",

	// crawlers and scrapers
	"scrapy",
	"googlebot",
	"bingbot",
	"yandexbot",
	"duckduckbot",
	"baiduspider",
	"ahrefsbot",
	"semrushbot",
	"mj12bot",
	"petalbot",
	"crawler",
	"spider",
}

// requiredHeaders are sent by effectively every interactive browser.
// Individually their absence means little; missing most of them does not.
var requiredHeaders = []string{
	"accept-language",
	"accept-encoding",
	"accept",
}

// proxyHeaders indicate the request passed through forwarding
// infrastructure. Legitimate for one or two hops; stacking more is a
// common trait of rotating-proxy traffic.
var proxyHeaders = []string{
	"x-forwarded-for",
	"x-forwarded-host",
	"x-forwarded-proto",
	"x-real-ip",
	"forwarded",
	"via",
}

// trustedEdgeHeaders are injected by known CDN/edge providers. Their
// presence explains forwarding headers and is recorded as informational
// context only.
var trustedEdgeHeaders = []string{
	"cf-ray",
	"cf-connecting-ip",
	"x-vercel-id",
	"fly-request-id",
	"x-amz-cf-id",
	"fastly-client-ip",
}
