// Package script renders the shell script that installs nginx on the target server and serves the build archive
// from it.
package script

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

// Supported script templates.
const (
	Auto   = "auto"
	Simple = "simple"
	// Hardened adds compression, security headers and a config check before nginx is restarted.
	Hardened = "hardened"
)

// Variants lists the names accepted by Render.
var Variants = []string{Auto, Simple, Hardened}

// Archive formats understood by the extraction step.
const (
	FormatTarGz = "tgz"
	FormatZip   = "zip"
)

var (
	// ErrMissingURL is returned when neither a Retrieval URL nor a server side source path is given.
	ErrMissingURL = errors.New("no retrieval URL given")
	// ErrMissingServer is returned when no server address is given.
	ErrMissingServer = errors.New("no server address given")
)

//go:embed templates/*.sh.tmpl
var tplFS embed.FS

var templates = template.Must(template.New("script").Funcs(template.FuncMap{
	"join":  strings.Join,
	"quote": Quote,
}).ParseFS(tplFS, "templates/*.sh.tmpl"))

var (
	siteNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	webRootRe  = regexp.MustCompile(`^/[A-Za-z0-9._/-]*$`)
	serverRe   = regexp.MustCompile("^[^\\s;'\"{}$`#\\\\]+$")
)

// systemDirs are top level directories a site is never served from, since the script chowns the web root.
var systemDirs = map[string]bool{
	"bin": true, "boot": true, "dev": true, "etc": true, "lib": true, "lib64": true, "proc": true,
	"root": true, "run": true, "sbin": true, "sys": true, "usr": true,
}

// Params holds the values substituted into a script template.
type Params struct {
	// URL is the Retrieval URL the archive is downloaded from.
	URL string
	// Source is the path of an archive that is already present on the server. Takes precedence over URL.
	Source string
	// ServerAddress is used as the nginx server_name and in the final message.
	ServerAddress string
	SiteName      string
	WebRoot       string
	// ArchiveName is the file name the archive is downloaded to. Defaults to SiteName plus the format's extension.
	ArchiveName string
	// Format is either FormatTarGz or FormatZip. Defaults to FormatTarGz.
	Format      string
	CacheAssets bool
}

// Validate checks that p can be rendered into a well-formed script.
func (p Params) Validate() error {
	if p.URL == "" && p.Source == "" {
		return ErrMissingURL
	}
	if p.ServerAddress == "" {
		return ErrMissingServer
	}
	if !serverRe.MatchString(p.ServerAddress) {
		return fmt.Errorf("invalid server address '%s'", p.ServerAddress)
	}
	if !siteNameRe.MatchString(p.SiteName) {
		return fmt.Errorf("invalid site name '%s': only letters, digits, '.', '_' and '-' are allowed", p.SiteName)
	}
	if err := validateWebRoot(p.WebRoot); err != nil {
		return err
	}
	switch p.Format {
	case "", FormatTarGz, FormatZip:
	default:
		return fmt.Errorf("unknown archive format '%s'", p.Format)
	}
	return nil
}

// validateWebRoot accepts absolute, clean paths at least two levels deep outside of the system directories.
func validateWebRoot(root string) error {
	if !webRootRe.MatchString(root) {
		return fmt.Errorf("invalid web root '%s': must be an absolute path", root)
	}
	segs := strings.Split(strings.TrimSuffix(root[1:], "/"), "/")
	for _, s := range segs {
		if s == "" || s == "." || s == ".." {
			return fmt.Errorf("invalid web root '%s': must not contain empty, '.' or '..' elements", root)
		}
	}
	if len(segs) < 2 || systemDirs[segs[0]] {
		return fmt.Errorf("invalid web root '%s': must be a dedicated directory such as /var/www/<site>", root)
	}
	return nil
}

// view is what the templates are executed with.
type view struct {
	Params
	Packages []string
	Steps    []string
}

func newView(variant string, p Params) view {
	if p.Format == "" {
		p.Format = FormatTarGz
	}
	if p.ArchiveName == "" {
		p.ArchiveName = p.SiteName + ext(p.Format)
	}

	v := view{Params: p, Packages: []string{"nginx"}}

	archive := p.ArchiveName
	if p.Source != "" {
		archive = p.Source
	} else {
		switch variant {
		case Simple:
			v.Steps = append(v.Steps, fmt.Sprintf("wget -O %s %s", Quote(archive), Quote(p.URL)))
		case Hardened:
			v.Packages = append(v.Packages, "curl")
			v.Steps = append(v.Steps, fmt.Sprintf("curl -fsSL -o %s %s", Quote(archive), Quote(p.URL)))
		default:
			v.Packages = append(v.Packages, "wget")
			v.Steps = append(v.Steps, fmt.Sprintf("wget -O %s %s", Quote(archive), Quote(p.URL)))
		}
	}

	if p.Format == FormatZip {
		v.Packages = append(v.Packages, "unzip")
		v.Steps = append(v.Steps, fmt.Sprintf("unzip -o %s", Quote(archive)))
	} else {
		v.Steps = append(v.Steps, fmt.Sprintf("tar -xzf %s", Quote(archive)))
	}

	if p.Source == "" && variant != Simple {
		v.Steps = append(v.Steps, fmt.Sprintf("rm -f %s", Quote(archive)))
	}

	return v
}

func ext(format string) string {
	if format == FormatZip {
		return ".zip"
	}
	return ".tar.gz"
}

// FileName returns the name of the file a rendered variant is written to.
func FileName(variant string) string {
	return variant + "_deploy.sh"
}

// Render renders the script template variant with p. Output only depends on its inputs.
func Render(variant string, p Params) ([]byte, error) {
	t := templates.Lookup(variant + ".sh.tmpl")
	if t == nil {
		return nil, fmt.Errorf("unknown script template '%s', expected one of: %v", variant, Variants)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, newView(variant, p)); err != nil {
		return nil, fmt.Errorf("failed to render script: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders variant and writes it as an executable file into dir, replacing any previous one.
// Nothing is written if rendering fails.
func WriteFile(dir, variant string, p Params) (string, error) {
	b, err := Render(variant, p)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(variant))
	if err := os.WriteFile(path, b, 0755); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}
