package config

var defaults = map[string]any{
	"secret":    "",
	"log_level": "info",
	"timezone":  DEFAULT_TIMEZONE,

	"cache_store": "memory",
	"cache_ttl":   12 * 60 * 60, // 12 hours

	"nonce_store": "memory",
	"nonce_ttl":   24 * 60 * 60, // 1 day

	"test_mode_ttl":   24 * 60 * 60, // 1 day
	"test_mode_param": "advent_test",

	"allowed_networks": "",
	"base_url":         "/",
	"default_lang":     "de",

	"finale.download_url":   "https://guideos.de/download/",
	"finale.download_label": "Download",

	"oembed.enabled": true,
	"oembed.timeout": 5,

	"storage.local.path": "./data/storage.db",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
