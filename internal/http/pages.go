package http

import "html/template"

var pages = template.Must(template.New("inline.html").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>body{margin:0;background:#111;color:#eee;font-family:monospace;text-align:center}img{max-width:100%}</style>
</head><body>
<img src="{{.Image}}" alt="{{.Title}}">
<p>Long-press the card to save it.</p>
{{if .Link}}<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
</body></html>
`))

func init() {
	template.Must(pages.New("print.html").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>@page{size:A4 portrait;margin:20mm 0 0 0}body{margin:0;text-align:center}img{width:131mm;height:88mm}</style>
</head><body onload="window.print()">
<img src="{{.Image}}" alt="{{.Title}}">
</body></html>
`))
}
