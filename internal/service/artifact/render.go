package artifact

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"passit-client/internal/cache/local"
)

// Card faces are 280x400 logical points rendered at 2x.
const (
	CardWidth  = 560
	CardHeight = 800

	qrSize    = 400
	quietZone = 40

	// print layout, millimetres
	faceWidthMM  = 63.0
	faceHeightMM = 88.0
	gutterMM     = 5.0
	a4WidthMM    = 210.0
	layoutDPI    = 300.0
)

var (
	colBackground = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colPanel      = color.RGBA{0x18, 0x18, 0x1b, 0xff}
	colAccent     = color.RGBA{0x22, 0xc5, 0x5e, 0xff}
	colMuted      = color.RGBA{0x71, 0x71, 0x7a, 0xff}
	colFaint      = color.RGBA{0x52, 0x52, 0x5b, 0xff}
	colWhite      = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

var backLines = []string{
	"1. SCAN THE QR ON THE FRONT",
	"2. LOG IN WITH YOUR WALLET",
	"3. CLAIM YOUR REWARD",
	"4. PASS YOUR NEW CARDS ON",
}

// Renderer draws card faces and print layouts. PNG faces are cached by link.
type Renderer struct {
	cache local.ICache
	log   zerolog.Logger
}

// NewRenderer creates a renderer; cache may be nil.
func NewRenderer(cache local.ICache, log zerolog.Logger) *Renderer {
	return &Renderer{cache: cache, log: log.With().Str("component", "renderer").Logger()}
}

// Front renders the QR face of card as PNG.
func (r *Renderer) Front(card Card) ([]byte, error) {
	return r.cached(cacheKey("front", card), func() (image.Image, error) { return frontFace(card) })
}

// Back renders the instructions face of card as PNG.
func (r *Renderer) Back(card Card) ([]byte, error) {
	return r.cached(cacheKey("back", card), func() (image.Image, error) { return backFace(card), nil })
}

// Layout renders front and back side by side at print size.
func (r *Renderer) Layout(card Card) ([]byte, error) {
	img, err := layout(card)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// PDF renders the print layout centred on one A4 portrait page.
func (r *Renderer) PDF(card Card) ([]byte, error) {
	sheet, err := r.Layout(card)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(card.FileName("pdf"), true)
	pdf.SetCreator("passit", true)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	name := fmt.Sprintf("card-%d", card.Number())
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(sheet))

	width := 2*faceWidthMM + gutterMM
	x := (a4WidthMM - width) / 2
	pdf.ImageOptions(name, x, 20, width, faceHeightMM, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0x71, 0x71, 0x7a)
	pdf.Text(x, 20+faceHeightMM+8, "Cut along the card edges and fold on the gutter. ID "+card.ShortID)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// cacheKey covers everything a face draws: the link and the card number.
func cacheKey(face string, card Card) string {
	return fmt.Sprintf("%s:%d:%s", face, card.Number(), card.Link)
}

func (r *Renderer) cached(key string, render func() (image.Image, error)) ([]byte, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(key); err == nil {
			return data, nil
		} else if !local.IsMiss(err) {
			r.log.Debug().Err(err).Msg("Card cache read failed")
		}
	}

	img, err := render()
	if err != nil {
		return nil, err
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(key, data); err != nil {
			r.log.Debug().Err(err).Msg("Card cache write failed")
		}
	}
	return data, nil
}

func frontFace(card Card) (image.Image, error) {
	q, err := qrcode.New(card.Link, qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true

	img := newFace()
	drawCentered(img, "PASS-IT-(AE)ON", 40, 3, colAccent)
	drawCentered(img, fmt.Sprintf("SERIES v0.3 // NODE #%d", card.Number()), 92, 2, colMuted)

	panel := image.Rect(0, 0, qrSize+2*quietZone, qrSize+2*quietZone).
		Add(image.Pt((CardWidth-qrSize)/2-quietZone, 140))
	fill(img, panel, colWhite)
	qrAt := panel.Min.Add(image.Pt(quietZone, quietZone))
	draw.Draw(img, image.Rect(qrAt.X, qrAt.Y, qrAt.X+qrSize, qrAt.Y+qrSize), q.Image(qrSize), image.Point{}, draw.Src)

	box := image.Rect(40, 648, CardWidth-40, 732)
	fill(img, box, colPanel)
	drawCentered(img, "REWARD: AUTO-CLAIM", 662, 2, colAccent)
	drawCentered(img, "SCAN TO INITIATE PROTOCOL", 696, 2, colMuted)
	drawCentered(img, "ID: "+card.ShortID, 752, 2, colFaint)
	return img, nil
}

func backFace(card Card) image.Image {
	img := newFace()
	drawCentered(img, "HOW IT WORKS", 80, 3, colAccent)
	y := 220
	for _, line := range backLines {
		drawCentered(img, line, y, 2, colWhite)
		y += 80
	}
	drawCentered(img, "ONE CODE. ONE CLAIM.", 600, 2, colMuted)
	drawCentered(img, "ID: "+card.ShortID, 752, 2, colFaint)
	return img
}

// newFace returns a blank face with the accent bar and corner brackets.
func newFace() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	fill(img, img.Bounds(), colBackground)
	fill(img, image.Rect(0, 0, CardWidth, 4), colAccent)

	const inset, arm, w = 24, 24, 4
	for _, c := range []image.Point{{inset, inset}, {CardWidth - inset - arm, inset}, {inset, CardHeight - inset - arm}, {CardWidth - inset - arm, CardHeight - inset - arm}} {
		top := c.Y == inset
		left := c.X == inset
		hy := c.Y
		if !top {
			hy = c.Y + arm - w
		}
		vx := c.X
		if !left {
			vx = c.X + arm - w
		}
		fill(img, image.Rect(c.X, hy, c.X+arm, hy+w), colAccent)
		fill(img, image.Rect(vx, c.Y, vx+w, c.Y+arm), colAccent)
	}
	return img
}

func layout(card Card) (image.Image, error) {
	front, err := frontFace(card)
	if err != nil {
		return nil, err
	}
	back := backFace(card)

	pxPerMM := layoutDPI / 25.4
	faceW := int(faceWidthMM * pxPerMM)
	faceH := int(faceHeightMM * pxPerMM)
	gutter := int(gutterMM * pxPerMM)

	sheet := image.NewRGBA(image.Rect(0, 0, 2*faceW+gutter, faceH))
	fill(sheet, sheet.Bounds(), colWhite)
	draw.CatmullRom.Scale(sheet, image.Rect(0, 0, faceW, faceH), front, front.Bounds(), draw.Src, nil)
	draw.CatmullRom.Scale(sheet, image.Rect(faceW+gutter, 0, 2*faceW+gutter, faceH), back, back.Bounds(), draw.Src, nil)
	return sheet, nil
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawCentered writes s horizontally centred with its top at y, scaled up from the 7x13 face.
func drawCentered(dst *image.RGBA, s string, y, scale int, c color.Color) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Height
	if w == 0 {
		return
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	x := (dst.Bounds().Dx() - w*scale) / 2
	draw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w*scale, y+h*scale), glyphs, glyphs.Bounds(), draw.Over, nil)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
