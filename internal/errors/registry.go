package errors

// ErrorTemplate defines a registered error code.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vroute.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route table errors (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryConfig,
		Message:  "Invalid route node",
		Detail:   "Every route must be a page with a view, a redirect, or a layout with at least one child.",
		DocURL:   docBase + "R001",
	},
	"R002": {
		Category: CategoryConfig,
		Message:  "Invalid route segment",
		Detail:   "Literal segments may contain letters, digits and URL-safe punctuation, but not '/', ':' or '*'.",
		DocURL:   docBase + "R002",
	},
	"R003": {
		Category: CategoryConfig,
		Message:  "Ambiguous wildcard",
		Detail:   "Only one wildcard route may appear among siblings. The second one could never match.",
		DocURL:   docBase + "R003",
	},
	"R004": {
		Category: CategoryConfig,
		Message:  "Wildcard route has children",
		Detail:   "A wildcard consumes every remaining segment, so its children could never match.",
		DocURL:   docBase + "R004",
	},
	"R005": {
		Category: CategoryConfig,
		Message:  "Invalid redirect target",
		Detail:   "Redirect targets must be absolute paths inside the application, such as /dashboard.",
		DocURL:   docBase + "R005",
	},
	"R006": {
		Category: CategoryConfig,
		Message:  "Unknown view",
		Detail:   "The route names a view that the configured view source does not provide.",
		DocURL:   docBase + "R006",
	},
	"R010": {
		Category: CategoryConfig,
		Message:  "Invalid route table",
		Detail:   "The route table failed validation. Each problem is listed below.",
		DocURL:   docBase + "R010",
	},

	// ============================================
	// Navigation errors (R020-R039)
	// ============================================

	"R020": {
		Category: CategoryNavigation,
		Message:  "Redirect loop",
		Detail:   "Following redirects revisited a path or exceeded the hop limit. Check that redirect targets eventually reach a page.",
		DocURL:   docBase + "R020",
	},
	"R021": {
		Category: CategoryNavigation,
		Message:  "Invalid path",
		Detail:   "The path could not be canonicalized. Paths must be absolute and must not contain backslashes, NUL bytes or bad percent escapes.",
		DocURL:   docBase + "R021",
	},
	"R022": {
		Category: CategoryNavigation,
		Message:  "No route matched",
		Detail:   "No route in the table matches the path. Add a catch-all route such as /*rest to render an error page.",
		DocURL:   docBase + "R022",
	},

	// ============================================
	// Load errors (R040-R059)
	// ============================================

	"R040": {
		Category: CategoryLoad,
		Message:  "View failed to load",
		Detail:   "The loader for a view returned an error. The failure was not cached; the next navigation retries it.",
		DocURL:   docBase + "R040",
	},
	"R041": {
		Category: CategoryLoad,
		Message:  "View source unavailable",
		Detail:   "The view source (directory or bucket) could not be reached.",
		DocURL:   docBase + "R041",
	},

	// ============================================
	// Project configuration errors (R060-R079)
	// ============================================

	"R060": {
		Category: CategoryProject,
		Message:  "Configuration file not found",
		Detail:   "No vroute.json or vroute.toml was found in the directory or its parents.",
		DocURL:   docBase + "R060",
	},
	"R061": {
		Category: CategoryProject,
		Message:  "Configuration parse error",
		Detail:   "The configuration file is not valid JSON or TOML.",
		DocURL:   docBase + "R061",
	},
	"R062": {
		Category: CategoryProject,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or inconsistent.",
		DocURL:   docBase + "R062",
	},

	// ============================================
	// CLI and server errors (R080-R099)
	// ============================================

	"R080": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command could not complete.",
		DocURL:   docBase + "R080",
	},
	"R081": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The server could not start or stopped unexpectedly. Check that the address is free.",
		DocURL:   docBase + "R081",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds an error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
