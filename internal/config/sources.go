package config

// Availability tags derived from the configured credentials.
const (
	AvailableBoth   = "both"
	AvailableReddit = "reddit"
	AvailableX      = "x"
	AvailableWeb    = "web"
)

// Effective source sets returned by ValidateSources.
const (
	SourcesAll       = "all"
	SourcesRedditWeb = "reddit-web"
	SourcesXWeb      = "x-web"
	SourcesNone      = "none"
	SourcesAuto      = "auto"
)

// AvailableSources derives which sources can be queried from the keys that
// are present. With no keys at all only externally supplied web results are
// usable.
func AvailableSources(c *Config) string {
	hasOpenAI := c.OpenAIAPIKey != ""
	hasXAI := c.XAIAPIKey != ""
	switch {
	case hasOpenAI && hasXAI:
		return AvailableBoth
	case hasOpenAI:
		return AvailableReddit
	case hasXAI:
		return AvailableX
	default:
		return AvailableWeb
	}
}

// MissingKeys names the source whose key is missing: "none", "x",
// "reddit" or "both".
func MissingKeys(c *Config) string {
	hasOpenAI := c.OpenAIAPIKey != ""
	hasXAI := c.XAIAPIKey != ""
	switch {
	case hasOpenAI && hasXAI:
		return "none"
	case hasOpenAI:
		return AvailableX
	case hasXAI:
		return AvailableReddit
	default:
		return AvailableBoth
	}
}

// ValidateSources reconciles the requested source set with what is
// available. It returns the effective set and, when the request cannot be
// honoured as asked, a human-readable message. An effective value of
// SourcesNone means nothing should be fetched.
func ValidateSources(requested, available string, includeWeb bool) (string, string) {
	if available == AvailableWeb {
		switch requested {
		case SourcesAuto, AvailableWeb:
			return AvailableWeb, ""
		default:
			return AvailableWeb, "No API keys configured. Using WebSearch fallback. Add keys to ~/.config/last30days/.env for Reddit/X."
		}
	}

	switch requested {
	case SourcesAuto:
		if includeWeb {
			switch available {
			case AvailableBoth:
				return SourcesAll, ""
			case AvailableReddit:
				return SourcesRedditWeb, ""
			case AvailableX:
				return SourcesXWeb, ""
			}
		}
		return available, ""
	case AvailableWeb:
		return AvailableWeb, ""
	case AvailableBoth:
		if available != AvailableBoth {
			missing := "OpenAI"
			if available == AvailableReddit {
				missing = "xAI"
			}
			return SourcesNone, "Requested both sources but " + missing + " key is missing. Use --sources=auto to use available keys."
		}
		if includeWeb {
			return SourcesAll, ""
		}
		return AvailableBoth, ""
	case AvailableReddit:
		if available == AvailableX {
			return SourcesNone, "Requested Reddit but only xAI key is available."
		}
		if includeWeb {
			return SourcesRedditWeb, ""
		}
		return AvailableReddit, ""
	case AvailableX:
		if available == AvailableReddit {
			return SourcesNone, "Requested X but only OpenAI key is available."
		}
		if includeWeb {
			return SourcesXWeb, ""
		}
		return AvailableX, ""
	}
	return requested, ""
}

// WantsReddit reports whether an effective source set includes Reddit.
func WantsReddit(effective string) bool {
	switch effective {
	case AvailableBoth, AvailableReddit, SourcesAll, SourcesRedditWeb:
		return true
	}
	return false
}

// WantsX reports whether an effective source set includes X.
func WantsX(effective string) bool {
	switch effective {
	case AvailableBoth, AvailableX, SourcesAll, SourcesXWeb:
		return true
	}
	return false
}

// WantsWeb reports whether an effective source set includes web results.
func WantsWeb(effective string) bool {
	switch effective {
	case AvailableWeb, SourcesAll, SourcesRedditWeb, SourcesXWeb:
		return true
	}
	return false
}
