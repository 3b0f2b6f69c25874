package oauth

import (
	"fmt"
	"html"
)

// resultHTML renders the page shown in the browser after the redirect.
// Both values are escaped.
//
//nolint:misspell // CSS properties use American spelling (center, color)
func resultHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>nowplaying - Login</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #121212;
        }
        .container {
            text-align: center;
            background: #181818;
            padding: 48px 64px;
            border-radius: 16px;
            box-shadow: 0 4px 24px rgba(0,0,0,0.4);
        }
        h1 { color: #1DB954; margin: 0 0 8px 0; font-size: 24px; font-weight: 600; }
        p { color: #B3B3B3; margin: 0; font-size: 16px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}
