/*
Package webdriver is a small W3C WebDriver client.

It covers exactly the commands the render service issues: session creation
with capability negotiation, navigation, title, page source, cookies,
synchronous script execution and session deletion. Transport is resty over a
pooled retryablehttp transport with sonic as the JSON codec; commands are
never retried.

# Usage

	client := webdriver.NewClient(webdriver.Config{URL: "http://localhost:4444"})
	caps := webdriver.FirefoxCapabilities(true, []string{"--no-sandbox"})

	sess, err := client.NewSession(ctx, caps)
	if err != nil {
		return err
	}
	if err := sess.Navigate(ctx, "https://example.com"); err != nil {
		return err
	}
	html, err := sess.PageSource(ctx)

# Errors

Remote end failures decode to *Error carrying the W3C error code. Transport
failures (connection refused, timeouts) are returned wrapped and are not
*Error values.
*/
package webdriver
