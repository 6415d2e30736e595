package main

// Options are the demo's command line flags.
type Options struct {
	ConfigFile string `short:"c" long:"config" description:"YAML config file, defaults to $RDP_CONFIG_FILE (environment variables take precedence)"`
	Universe   string `short:"u" long:"universe" default:"IBM.N" description:"Instrument(s) for ESG, fundamentals and business summary"`
	RIC        string `long:"ric" default:"EUR=" description:"Instrument for historical pricing events"`
	Count      int    `long:"count" default:"15" description:"Number of historical pricing events"`
	Issuer     string `long:"discover" description:"Resolve token and revoke endpoints from this OpenID issuer"`
	Mock       bool   `long:"mock" description:"Run against an in-process mock platform"`
	KeepOpen   bool   `long:"keep-open" description:"Do not revoke the token on exit"`
	NoBanner   bool   `long:"no-banner" description:"Skip the startup banner"`
}
