package artifact

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
	"passit-client/internal/metrics"
)

// Generator turns child tokens into cards and delivers them through a platform.
// Failures are per card and reported as ARTIFACT_ERROR; they never touch the claim flow.
type Generator struct {
	shareBase string
	renderer  *Renderer
	log       zerolog.Logger
}

func NewGenerator(shareBase string, renderer *Renderer, log zerolog.Logger) *Generator {
	return &Generator{
		shareBase: shareBase,
		renderer:  renderer,
		log:       log.With().Str("component", "artifacts").Logger(),
	}
}

// Cards returns one card per child token.
func (g *Generator) Cards(tokens []claim.Token) []Card {
	return NewCards(g.shareBase, tokens)
}

// CopyLink writes the card link to the platform clipboard when there is one and returns it.
func (g *Generator) CopyLink(ctx context.Context, card Card, p Platform) (string, error) {
	cb, ok := p.(Clipboard)
	if !ok {
		return card.Link, nil
	}
	if err := cb.WriteText(ctx, card.Link); err != nil {
		g.log.Warn().Err(err).Str("platform", p.Name()).Int("card", card.Number()).Msg("Clipboard write failed")
		return card.Link, apperrors.NewArtifactError("copy_link", err)
	}
	return card.Link, nil
}

// Download renders the front face and delivers it: share, then save, then inline.
func (g *Generator) Download(ctx context.Context, card Card, p Platform) (Delivery, error) {
	data, err := g.renderer.Front(card)
	if err != nil {
		return Delivery{}, apperrors.NewArtifactError("render", err)
	}
	f := File{Name: card.FileName("png"), MIME: "image/png", Data: data, Link: card.Link}
	return g.deliver(ctx, "download", f, p)
}

// Print composes both faces side by side. Touch platforms get an A4 PDF through the
// download chain; others get the layout image on their printer.
func (g *Generator) Print(ctx context.Context, card Card, p Platform) (Delivery, error) {
	pr, canPrint := p.(Printer)
	if !isTouch(p) && canPrint {
		data, err := g.renderer.Layout(card)
		if err != nil {
			return Delivery{}, apperrors.NewArtifactError("render", err)
		}
		f := File{Name: card.FileName("png"), MIME: "image/png", Data: data, Link: card.Link}
		err = pr.Print(ctx, f)
		if err == nil {
			return g.delivered("print", Delivery{Method: DeliveryPrint, File: f.Name}), nil
		}
		g.log.Warn().Err(err).Str("platform", p.Name()).Msg("Print dialog failed, falling back to PDF")
	}

	data, err := g.renderer.PDF(card)
	if err != nil {
		return Delivery{}, apperrors.NewArtifactError("render", err)
	}
	f := File{Name: card.FileName("pdf"), MIME: "application/pdf", Data: data, Link: card.Link}
	return g.deliver(ctx, "print", f, p)
}

func (g *Generator) deliver(ctx context.Context, action string, f File, p Platform) (Delivery, error) {
	log := g.log.With().Str("action", action).Str("platform", p.Name()).Str("file", f.Name).Logger()
	var failures []error

	if s, ok := p.(Sharer); ok && s.CanShare(f) {
		err := s.Share(ctx, f)
		if err == nil {
			return g.delivered(action, Delivery{Method: DeliveryShare, File: f.Name}), nil
		}
		if errors.Is(err, ErrShareCancelled) {
			log.Debug().Msg("Share cancelled, saving instead")
		} else {
			log.Warn().Err(err).Msg("Share failed")
		}
		failures = append(failures, err)
	}

	if s, ok := p.(Saver); ok {
		loc, err := s.Save(ctx, f)
		if err == nil {
			return g.delivered(action, Delivery{Method: DeliverySave, File: f.Name, Location: loc}), nil
		}
		log.Warn().Err(err).Msg("Save failed")
		failures = append(failures, err)
	}

	if s, ok := p.(InlinePresenter); ok {
		err := s.ShowInline(ctx, f)
		if err == nil {
			return g.delivered(action, Delivery{Method: DeliveryInline, File: f.Name}), nil
		}
		log.Warn().Err(err).Msg("Inline display failed")
		failures = append(failures, err)
	}

	if len(failures) == 0 {
		failures = append(failures, errNoDelivery)
	}
	log.Error().Msg("Artifact could not be delivered")
	return Delivery{}, apperrors.NewArtifactError(action, errors.Join(failures...))
}

func (g *Generator) delivered(action string, d Delivery) Delivery {
	metrics.ArtifactDelivered(action, string(d.Method))
	g.log.Info().Str("action", action).Str("method", string(d.Method)).Str("file", d.File).Msg("Artifact delivered")
	return d
}
