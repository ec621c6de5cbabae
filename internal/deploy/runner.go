package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qbpharma/deployctl/internal/archive"
	"github.com/qbpharma/deployctl/internal/ci"
	"github.com/qbpharma/deployctl/internal/hashio"
	"github.com/qbpharma/deployctl/internal/human"
	"github.com/qbpharma/deployctl/internal/jsonio"
	"github.com/qbpharma/deployctl/internal/msg"
	"github.com/qbpharma/deployctl/internal/notification"
	"github.com/qbpharma/deployctl/internal/progress"
	"github.com/qbpharma/deployctl/internal/report"
	"github.com/qbpharma/deployctl/internal/script"
	"github.com/qbpharma/deployctl/internal/storage"
)

// Step names as they appear in reports.
const (
	StepValidate = "validate"
	StepArchive  = "archive"
	StepUpload   = "upload"
	StepScript   = "script"
	StepConnect  = "connect"
	StepDeploy   = "deploy"
)

// Result summarizes a deployment.
type Result struct {
	Passed     bool                `json:"passed"`
	Duration   time.Duration       `json:"duration"`
	FileCount  int                 `json:"fileCount"`
	Size       int64               `json:"size"`
	SHA256     string              `json:"sha256,omitempty"`
	URL        string              `json:"url,omitempty"`
	ScriptPath string              `json:"scriptPath,omitempty"`
	Steps      []report.StepResult `json:"steps"`
	Error      string              `json:"error,omitempty"`
	Origin     ci.CI               `json:"origin"`
}

func (r *Result) track(name string, start time.Time, details string, err error) {
	s := report.StepResult{
		Name:     name,
		Duration: time.Since(start),
		Passed:   err == nil,
		Details:  details,
	}
	if err != nil {
		s.Error = err.Error()
	}
	r.Steps = append(r.Steps, s)
}

// Runner archives the build, uploads it to a public file host and writes the deploy script that fetches it.
type Runner struct {
	Project   *Project
	Uploader  storage.Uploader
	Notifier  notification.Notifier
	Reporters []report.Reporter
	// Out receives the operator instructions. Defaults to os.Stdout.
	Out io.Writer
}

// Run executes the pipeline. The temporary archive is removed before Run returns, regardless of the outcome.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	err := r.run(ctx, &res)
	finish(ctx, r.Project, &res, start, err, r.Notifier, r.Reporters)

	return res, err
}

func (r *Runner) run(ctx context.Context, res *Result) error {
	if err := validateProject(r.Project, res); err != nil {
		return err
	}

	a, err := createArchive(r.Project, res)
	if err != nil {
		return err
	}
	defer removeArchive(a.Path)

	msg.LogPublicUploadWarning()

	started := time.Now()
	item, err := r.upload(ctx, a)
	res.track(StepUpload, started, item.URL, err)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	res.URL = item.URL

	started = time.Now()
	p := r.Project.ScriptParams(item.URL, a.Format)
	path, err := script.WriteFile(r.Project.Script.Output, r.Project.Script.Template, p)
	res.track(StepScript, started, path, err)
	if err != nil {
		return err
	}
	res.ScriptPath = path
	log.Info().Str("path", path).Msg("Deploy script written.")

	b, err := script.Render(r.Project.Script.Template, p)
	if err != nil {
		return err
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	msg.LogInstructions(out, r.Project.Server.User, r.Project.Server.Address, path, b)

	return nil
}

func (r *Runner) upload(ctx context.Context, a archive.Archive) (storage.Item, error) {
	timeout := r.Project.Upload.Timeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	name := a.Name(r.Project.Site.Name)
	log.Info().Str("provider", r.Project.Upload.Provider).Str("name", name).Msg("Uploading build archive.")

	progress.Show("Uploading %s", name)
	item, err := r.Uploader.Upload(ctx, a.Path, name)
	progress.Stop()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error().Msg(msg.UploadingTimeout)
		}
		return item, err
	}

	log.Info().Str("url", item.URL).Msg("Build archive uploaded.")
	return item, nil
}

// validateProject rejects script values before any side effect. The step is only reported when it fails.
func validateProject(p *Project, res *Result) error {
	started := time.Now()
	if err := p.validateScript(); err != nil {
		res.track(StepValidate, started, "", err)
		return err
	}
	return nil
}

// createArchive archives the project's build directory and records the outcome in res.
func createArchive(p *Project, res *Result) (archive.Archive, error) {
	started := time.Now()

	format, err := archive.ParseFormat(p.Archive.Format)
	if err != nil {
		res.track(StepArchive, started, "", err)
		return archive.Archive{}, err
	}

	a, err := archive.Create(archive.Options{Dir: p.BuildDir, Format: format, Exclude: p.Archive.Exclude})
	if err != nil {
		res.track(StepArchive, started, "", err)
		return a, err
	}

	res.FileCount = a.FileCount
	res.Size = a.Size
	if sum, err := hashio.SHA256(a.Path); err == nil {
		res.SHA256 = sum
	} else {
		log.Warn().Err(err).Msg("Unable to compute archive checksum.")
	}
	res.track(StepArchive, started, fmt.Sprintf("%d files, %s", a.FileCount, human.Bytes(a.Size)), nil)

	return a, nil
}

func removeArchive(path string) {
	if err := archive.Remove(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to remove temporary archive.")
		return
	}
	log.Debug().Str("path", path).Msg("Temporary archive removed.")
}

// finish completes res and hands it to the reporters, the JSON report and the notifier.
func finish(ctx context.Context, p *Project, res *Result, start time.Time, err error, n notification.Notifier, reporters []report.Reporter) {
	res.Duration = time.Since(start)
	res.Passed = err == nil
	res.Origin = ci.Detect(p.BuildDir)
	if err != nil {
		res.Error = err.Error()
	}

	for _, r := range reporters {
		for _, s := range res.Steps {
			r.Add(s)
		}
		r.Render()
	}

	if fn := p.Reporters.JSON.Filename; fn != "" {
		if err := jsonio.WriteFile(fn, res); err != nil {
			log.Error().Err(err).Str("file", fn).Msg("Failed to write JSON report.")
		}
	}

	if n != nil {
		n.Notify(ctx, notification.Event{
			Site:     p.Site.Name,
			Server:   p.Server.Address,
			URL:      res.URL,
			Passed:   res.Passed,
			Error:    res.Error,
			Duration: res.Duration,
			Origin:   res.Origin.String(),
		})
	}
}
