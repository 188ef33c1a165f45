package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"passit-client/internal/service/artifact"
)

var errInAppDownload = errors.New("in-app browsers cannot download files")

// in-app webviews ignore Content-Disposition: attachment
var inAppMarkers = []string{"Telegram", "FBAN", "FBAV", "Instagram", "Line/", "; wv)"}

var touchMarkers = []string{"Mobi", "Android", "iPhone", "iPad", "iPod"}

// webPlatform delivers artifacts as the HTTP response of the current request. It has no
// share sheet or clipboard: the browser owns those.
type webPlatform struct {
	c     *gin.Context
	touch bool
	inApp bool
}

func newWebPlatform(c *gin.Context) *webPlatform {
	ua := c.Request.UserAgent()
	return &webPlatform{c: c, touch: containsAny(ua, touchMarkers), inApp: containsAny(ua, inAppMarkers)}
}

func (p *webPlatform) Name() string {
	switch {
	case p.inApp:
		return "web-inapp"
	case p.touch:
		return "web-mobile"
	default:
		return "web-desktop"
	}
}

func (p *webPlatform) IsTouch() bool { return p.touch }

func (p *webPlatform) Save(_ context.Context, f artifact.File) (string, error) {
	if p.inApp {
		return "", errInAppDownload
	}
	p.c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	p.c.Data(http.StatusOK, f.MIME, f.Data)
	return "", nil
}

// ShowInline renders images on a page for a long-press save; other files open in place.
func (p *webPlatform) ShowInline(_ context.Context, f artifact.File) error {
	if !strings.HasPrefix(f.MIME, "image/") {
		p.c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, f.Name))
		p.c.Data(http.StatusOK, f.MIME, f.Data)
		return nil
	}
	p.c.HTML(http.StatusOK, "inline.html", gin.H{
		"Title": f.Name,
		"Image": dataURL(f),
		"Link":  f.Link,
	})
	return nil
}

// Print serves a page that opens the browser print dialog on load.
func (p *webPlatform) Print(_ context.Context, f artifact.File) error {
	p.c.HTML(http.StatusOK, "print.html", gin.H{
		"Title": f.Name,
		"Image": dataURL(f),
	})
	return nil
}

func dataURL(f artifact.File) template.URL {
	return template.URL("data:" + f.MIME + ";base64," + base64.StdEncoding.EncodeToString(f.Data))
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
