package artifact

import (
	"context"
	"errors"
)

// File is a rendered artifact handed to a platform.
type File struct {
	Name string
	MIME string
	Data []byte
	// Link is the claim link the artifact encodes, for presenters that cannot show binary data.
	Link string
}

// Platform is whatever hosts the display layer. Capabilities are discovered through the
// optional interfaces below; a platform implements only what it supports.
type Platform interface {
	Name() string
}

type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Sharer hands a file to the native share sheet.
type Sharer interface {
	CanShare(f File) bool
	Share(ctx context.Context, f File) error
}

// Saver stores a file where the user can find it and returns its location.
type Saver interface {
	Save(ctx context.Context, f File) (string, error)
}

// InlinePresenter shows the artifact in place for a manual long-press save.
type InlinePresenter interface {
	ShowInline(ctx context.Context, f File) error
}

// Printer sends an image straight to a print dialog.
type Printer interface {
	Print(ctx context.Context, f File) error
}

// TouchDetector reports whether the platform is a touch device.
type TouchDetector interface {
	IsTouch() bool
}

// ErrShareCancelled is returned by a Sharer when the user dismissed the share sheet.
var ErrShareCancelled = errors.New("share cancelled")

var errNoDelivery = errors.New("platform offers no way to deliver the file")

type DeliveryMethod string

const (
	DeliveryShare  DeliveryMethod = "share"
	DeliverySave   DeliveryMethod = "save"
	DeliveryInline DeliveryMethod = "inline"
	DeliveryPrint  DeliveryMethod = "print"
)

// Delivery describes how an artifact reached the user.
type Delivery struct {
	Method   DeliveryMethod `json:"method"`
	File     string         `json:"file"`
	Location string         `json:"location,omitempty"`
}

func isTouch(p Platform) bool {
	t, ok := p.(TouchDetector)
	return ok && t.IsTouch()
}
