package services

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/anjiri1684/educonnect/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// NoteRenderer turns a note into a printable PDF.
type NoteRenderer interface {
	RenderNote(ctx context.Context, note models.Note) ([]byte, error)
}

var noteTemplate = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #222; }
h1 { border-bottom: 2px solid #4f46e5; padding-bottom: 8px; }
.meta { color: #666; font-size: 12px; margin-bottom: 24px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.Owner}} &middot; {{.Created}}</div>
<div>{{.Body}}</div>
</body>
</html>`))

func noteHTML(note models.Note) (string, error) {
	data := struct {
		Title   string
		Owner   string
		Created string
		Body    template.HTML
	}{
		Title:   note.Title,
		Owner:   note.UserEmail,
		Created: note.CreatedAt.Format("January 2, 2006"),
		// Description was passed through the UGC policy on write.
		Body: template.HTML(note.Description),
	}
	var out bytes.Buffer
	if err := noteTemplate.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

// ChromeRenderer prints notes with a headless Chrome started per call.
type ChromeRenderer struct {
	Timeout time.Duration
}

func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{Timeout: 30 * time.Second}
}

func (r *ChromeRenderer) RenderNote(ctx context.Context, note models.Note) ([]byte, error) {
	htmlContent, err := noteHTML(note)
	if err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	if r.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		taskCtx, cancelTimeout = context.WithTimeout(taskCtx, r.Timeout)
		defer cancelTimeout()
	}

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, upstreamFailure("render note pdf", err)
	}
	return pdf, nil
}
