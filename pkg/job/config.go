package job

import (
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/fullshot/pkg/output"
	"github.com/entrhq/fullshot/pkg/pageutil"
	"github.com/entrhq/fullshot/pkg/sizes"
)

// Config is a capture job: the pages to shoot and where the images go.
type Config struct {
	// OutputDir receives the images. Empty means the system temp directory.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Format is png, jpeg or pdf.
	Format  string `yaml:"format" json:"format"`
	Quality int    `yaml:"quality" json:"quality"`

	// Size is the default viewport for pages without their own.
	Size string `yaml:"size" json:"size"`

	Pages []Page `yaml:"pages" json:"pages"`
}

// Page is one page of a job.
type Page struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`

	// Size is the viewport as "WxH". Empty uses the job size.
	Size string `yaml:"size" json:"size"`

	// Cookies are "name=value; attr=..." strings set before the capture.
	// The page is reloaded once they are set.
	Cookies []string `yaml:"cookies" json:"cookies"`

	// Scripts run in order after loading, before the capture.
	Scripts []string `yaml:"scripts" json:"scripts"`
}

// DefaultConfig returns a job with no pages and PNG output.
func DefaultConfig() *Config {
	return &Config{
		Format:  string(output.FormatPNG),
		Quality: output.DefaultQuality,
	}
}

// Load reads a YAML job file over DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the job. Failures match sizes.ErrConfiguration.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("%w: job has no pages", sizes.ErrConfiguration)
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("%w: quality must be between 1 and 100, got %d", sizes.ErrConfiguration, c.Quality)
	}
	if c.Size != "" {
		if _, err := sizes.Parse(c.Size); err != nil {
			return fmt.Errorf("job size: %w", err)
		}
	}

	seen := make(map[string]bool, len(c.Pages))
	files := make(map[string]string, len(c.Pages))
	for i, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("%w: page %d has no name", sizes.ErrConfiguration, i+1)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate page name %q", sizes.ErrConfiguration, p.Name)
		}
		seen[p.Name] = true

		// Output files are named after the page.
		if file := pageutil.ConvertToFileName(p.Name); file != "" {
			if other, ok := files[file]; ok {
				return fmt.Errorf("%w: pages %q and %q would both be saved as %q",
					sizes.ErrConfiguration, other, p.Name, file)
			}
			files[file] = p.Name
		}

		if !pageutil.IsURL(p.URL) {
			return fmt.Errorf("%w: page %q: not a url: %q", sizes.ErrConfiguration, p.Name, p.URL)
		}
		if p.Size != "" {
			if _, err := sizes.Parse(p.Size); err != nil {
				return fmt.Errorf("page %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// Filter returns the pages whose name matches the glob pattern. An empty
// pattern matches every page.
func (c *Config) Filter(pattern string) ([]Page, error) {
	if pattern == "" {
		return c.Pages, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid page pattern %q: %w", sizes.ErrConfiguration, pattern, err)
	}

	var pages []Page
	for _, p := range c.Pages {
		if g.Match(p.Name) {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// ViewportFor returns the viewport for p: its own size, else the job size.
// ok is false when neither is set.
func (c *Config) ViewportFor(p Page) (size sizes.Size, ok bool, err error) {
	text := p.Size
	if text == "" {
		text = c.Size
	}
	if text == "" {
		return sizes.Size{}, false, nil
	}
	size, err = sizes.Parse(text)
	if err != nil {
		return sizes.Size{}, false, err
	}
	return size, true, nil
}
