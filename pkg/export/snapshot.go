package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/wdgames/gameshelf/pkg/sizeunit"
)

// summaryTemplate mirrors the export modal's capture area: a fixed 800px dark
// table so the PNG looks the same regardless of where it is rendered.
const summaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; background: #14161c; font-family: "Segoe UI", Arial, sans-serif; }
  .capture { width: 800px; padding: 24px; box-sizing: border-box; color: #e8e8ef; }
  h1 { font-size: 22px; margin: 0 0 16px; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #262a36; }
  th { color: #8b90a0; text-transform: uppercase; font-size: 11px; letter-spacing: 1px; }
  td.size { color: #5c7cfa; font-weight: 600; }
  tr.total td { border-bottom: none; font-weight: 700; padding-top: 14px; }
  td.empty { text-align: center; color: #8b90a0; padding: 20px; }
</style>
</head>
<body>
<div class="capture">
  <h1>Daftar Game Pesanan</h1>
  <table>
    <tr><th>#</th><th>Judul</th><th>Size</th></tr>
    {{- if .Rows}}
    {{- range .Rows}}
    <tr><td>{{.N}}</td><td>{{.Title}}</td><td class="size">{{.SizeLabel}}</td></tr>
    {{- end}}
    {{- else}}
    <tr><td class="empty" colspan="3">Belum ada game yang dipilih.</td></tr>
    {{- end}}
    <tr class="total"><td colspan="2">Total Size</td><td class="size">{{.Total}}</td></tr>
  </table>
</div>
</body>
</html>`

var summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))

// RenderSummaryHTML produces the standalone HTML document the snapshot
// screenshots. Exposed separately so it can be tested without a browser.
func RenderSummaryHTML(rows []Row, totalGB float64) (string, error) {
	var buf bytes.Buffer
	err := summaryTmpl.Execute(&buf, struct {
		Rows  []Row
		Total string
	}{Rows: rows, Total: sizeunit.Format(totalGB)})
	if err != nil {
		return "", fmt.Errorf("render summary template: %w", err)
	}
	return buf.String(), nil
}

// detectChromePath finds a usable Chrome/Chromium binary, honoring an
// explicit override first.
func detectChromePath() string {
	if p := os.Getenv("GAMESHELF_CHROME"); p != "" {
		return p
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// SnapshotPNG renders the tabular summary into a PNG at 2x scale. This is the
// image-export collaborator; the composer itself never touches a browser.
func SnapshotPNG(ctx context.Context, rows []Row, totalGB float64) ([]byte, error) {
	html, err := RenderSummaryHTML(rows, totalGB)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var png []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(800, 600, chromedp.EmulateScale(2)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture summary image: %w", err)
	}
	return png, nil
}
