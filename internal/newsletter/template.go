package newsletter

import (
	"html/template"
	"strings"

	"github.com/harshapps/newsletter-agent/internal/news"
)

// htmlShell is the HTML email layout. Inline styles only: email clients
// strip <style> blocks inconsistently.
const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Subject}}</title>
</head>
<body style="font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;line-height:1.6;color:#333;max-width:600px;margin:0 auto;padding:20px;background-color:#f4f4f4;">
<div style="background-color:#ffffff;border-radius:10px;padding:30px;">
  <div style="text-align:center;margin-bottom:30px;padding-bottom:20px;border-bottom:3px solid #3498db;">
    <h1 style="color:#2c3e50;margin:0;font-size:28px;">{{.Subject}}</h1>
    <p style="color:#7f8c8d;margin:10px 0 0 0;font-size:16px;">{{.DateFetched}}</p>
  </div>
  <p style="font-size:18px;color:#2c3e50;">Good morning!</p>
  {{if .Topics}}<p>Here's your personalized news summary for today covering: <strong>{{.Topics}}</strong></p>{{end}}
  {{if .Items}}
  <h2 style="color:#34495e;border-left:4px solid #3498db;padding-left:15px;">Top Stories</h2>
  {{range .Items}}
  <div style="margin-bottom:20px;padding:15px;background-color:#f8f9fa;border-radius:8px;">
    <h3 style="margin:0 0 8px 0;color:#2c3e50;font-size:17px;">
      {{if .URL}}<a href="{{.URL}}" style="color:#2c3e50;text-decoration:none;">{{.Title}}</a>{{else}}{{.Title}}{{end}}
    </h3>
    {{if .Summary}}<p style="margin:0 0 8px 0;color:#555;">{{.Summary}}</p>{{end}}
    <p style="margin:0;color:#95a5a6;font-size:13px;">Source: {{.SourceLabel}}</p>
  </div>
  {{end}}
  {{else}}
  <p>No news articles found for your topics today.</p>
  {{end}}
  <p style="margin-top:30px;">Stay informed and have a great day!</p>
  <p style="color:#7f8c8d;font-size:13px;">Best regards,<br>Your Newsletter Agent</p>
</div>
</body>
</html>`

var htmlTmpl = template.Must(template.New("newsletter").Parse(htmlShell))

type htmlData struct {
	Subject     string
	DateFetched string
	Topics      string
	Items       []news.Item
}

// renderHTML renders the HTML newsletter body.
func renderHTML(subject string, topics []string, result *news.Result) (string, error) {
	items := result.News
	if len(items) > maxStories {
		items = items[:maxStories]
	}

	var sb strings.Builder
	err := htmlTmpl.Execute(&sb, htmlData{
		Subject:     subject,
		DateFetched: result.DateFetched,
		Topics:      strings.Join(topics, ", "),
		Items:       items,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
