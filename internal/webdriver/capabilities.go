package webdriver

import "fmt"

// Capabilities is the alwaysMatch capability object sent on session creation.
type Capabilities map[string]any

// Supported browsers.
const (
	Firefox = "firefox"
	Chrome  = "chrome"
)

// FirefoxCapabilities requests a geckodriver-backed Firefox.
func FirefoxCapabilities(headless bool, args []string) Capabilities {
	all := append([]string{}, args...)
	if headless {
		all = append(all, "-headless")
	}
	return Capabilities{
		"browserName": Firefox,
		"moz:firefoxOptions": map[string]any{
			"args": all,
		},
	}
}

// ChromeCapabilities requests a chromedriver-backed Chrome.
func ChromeCapabilities(headless bool, args []string) Capabilities {
	all := append([]string{}, args...)
	if headless {
		all = append(all, "--headless=new")
	}
	return Capabilities{
		"browserName": Chrome,
		"goog:chromeOptions": map[string]any{
			"args": all,
		},
	}
}

// BrowserCapabilities picks the capability builder for browser.
func BrowserCapabilities(browser string, headless bool, args []string) (Capabilities, error) {
	switch browser {
	case Firefox:
		return FirefoxCapabilities(headless, args), nil
	case Chrome:
		return ChromeCapabilities(headless, args), nil
	default:
		return nil, fmt.Errorf("unsupported browser %q", browser)
	}
}

// Args returns the browser arguments carried by the capabilities.
func (c Capabilities) Args() []string {
	for _, key := range []string{"moz:firefoxOptions", "goog:chromeOptions"} {
		opts, ok := c[key].(map[string]any)
		if !ok {
			continue
		}
		if args, ok := opts["args"].([]string); ok {
			return args
		}
	}
	return nil
}
