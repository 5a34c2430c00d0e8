package inspect

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// CustomHeaderName and CustomHeaderValue are sent by the page script so the
// echo transcript shows a header set from the browser side.
const (
	CustomHeaderName  = "X-Custom-Header"
	CustomHeaderValue = "test-value"
	FrontendMessage   = "Hello from frontend!"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Headers and Cookies Display</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        .section { margin: 20px 0; padding: 15px; border: 1px solid #ddd; border-radius: 5px; }
        pre { background: #f5f5f5; padding: 10px; border-radius: 3px; overflow-x: auto; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; font-size: 16px; }
        button:hover { background: #0056b3; }
        #result { margin-top: 20px; padding: 10px; border: 1px solid #ccc; border-radius: 5px; background: #f8f9fa; }
        .hidden { display: none; }
    </style>
</head>
<body>
    <h1>Request Headers and Cookies</h1>

    <div class="section">
        <h2>Request Headers</h2>
        <pre id="headers">{{.Headers}}</pre>
    </div>

    <div class="section">
        <h2>Cookies</h2>
        <pre id="cookies">{{.Cookies}}</pre>
    </div>

    <div class="section">
        <h2>API Test</h2>
        <button onclick="callAPI()">Call API Endpoint</button>
        <div id="result" class="hidden">
            <h3>API Response:</h3>
            <pre id="response-content"></pre>
        </div>
    </div>

    <script>
        async function callAPI() {
            try {
                const response = await fetch({{.APIURL}}, {
                    method: 'POST',
                    headers: {
                        'Content-Type': 'application/json',
                        {{.HeaderName}}: {{.HeaderValue}}
                    },
                    credentials: 'include',
                    body: JSON.stringify({ message: {{.Message}} })
                });

                const data = await response.json();
                document.getElementById('response-content').textContent = JSON.stringify(data, null, 2);
                document.getElementById('result').classList.remove('hidden');
            } catch (error) {
                document.getElementById('response-content').textContent = 'Error: ' + error.message;
                document.getElementById('result').classList.remove('hidden');
            }
        }
    </script>
</body>
</html>
`))

// preText escapes text for element content. Quotes are left alone so the
// JSON dumps read naturally in the page source.
var preText = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

type pageData struct {
	Headers     template.HTML
	Cookies     template.HTML
	APIURL      string
	HeaderName  string
	HeaderValue string
	Message     string
}

// RenderPage produces the inspector page for a snapshot. The page script
// posts to apiURL.
func RenderPage(snap Snapshot, apiURL string) ([]byte, error) {
	headers, err := PrettyJSON(snap.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode headers: %w", err)
	}
	cookies, err := PrettyJSON(snap.Cookies)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cookies: %w", err)
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		Headers:     template.HTML(preText.Replace(headers)),
		Cookies:     template.HTML(preText.Replace(cookies)),
		APIURL:      apiURL,
		HeaderName:  CustomHeaderName,
		HeaderValue: CustomHeaderValue,
		Message:     FrontendMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// PageHandler serves the inspector page.
func PageHandler(apiURL string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := RenderPage(NewSnapshot(r), apiURL)
		if err != nil {
			logger.Error("Failed to render page", zap.Error(err))
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}
