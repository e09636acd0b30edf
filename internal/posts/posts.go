package posts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"churchsite/internal/calendar"
	appLog "churchsite/internal/log"
	"churchsite/internal/model"
)

// frontMatter is the YAML header of a post file.
type frontMatter struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Department string   `yaml:"department"`
	Tags       []string `yaml:"tags"`
	Excerpt    string   `yaml:"excerpt"`
	Images     []string `yaml:"images"`
	Attendees  int      `yaml:"attendees"`
	Budget     int64    `yaml:"budget"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Collection is an immutable, newest-first list of posts.
type Collection struct {
	posts []model.Post
}

// Load reads every *.md file in dir. A missing directory yields an empty
// collection. Files with an unreadable header are skipped and logged.
func Load(dir string) (*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Info("posts dir missing; no posts loaded", "dir", dir)
			return &Collection{posts: []model.Post{}}, nil
		}
		return nil, err
	}

	out := make([]model.Post, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		p, err := Parse(strings.TrimSuffix(name, ".md"), data)
		if err != nil {
			appLog.Error("post skipped", err, "file", name)
			continue
		}
		out = append(out, p)
	}

	appLog.Info("posts loaded", "dir", dir, "count", len(out))
	return NewCollection(out), nil
}

// NewCollection sorts posts newest first. Posts sharing a date keep their
// given order.
func NewCollection(posts []model.Post) *Collection {
	sorted := append([]model.Post(nil), posts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return postTime(sorted[i]).After(postTime(sorted[j]))
	})
	return &Collection{posts: sorted}
}

func postTime(p model.Post) time.Time {
	t, err := calendar.ParseDate(p.Date, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Parse splits a post file into its YAML header and Markdown body.
// A file without a header is all body.
func Parse(slug string, data []byte) (model.Post, error) {
	p := model.Post{Slug: slug, Tags: []string{}}

	header, body, ok := splitFrontMatter(data)
	if ok {
		var fm frontMatter
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return model.Post{}, fmt.Errorf("front matter of %s: %w", slug, err)
		}
		p.Title = fm.Title
		p.Date = fm.Date
		p.Department = fm.Department
		if fm.Tags != nil {
			p.Tags = fm.Tags
		}
		p.Excerpt = fm.Excerpt
		p.Images = fm.Images
		p.Attendees = fm.Attendees
		p.Budget = fm.Budget
	}
	p.Content = string(body)
	return p, nil
}

func splitFrontMatter(data []byte) (header, body []byte, ok bool) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, data, false
	}
	rest := normalized[len("---\n"):]

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, data, false
	}
	header = rest[:end]
	body = rest[end+len("\n---"):]
	// Drop the remainder of the closing fence line.
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return header, body, true
}

// All returns every post, newest first.
func (c *Collection) All() []model.Post {
	return c.posts
}

func (c *Collection) BySlug(slug string) (model.Post, bool) {
	for _, p := range c.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return model.Post{}, false
}

func (c *Collection) ByDepartment(departmentID string) []model.Post {
	out := make([]model.Post, 0)
	for _, p := range c.posts {
		if p.Department == departmentID {
			out = append(out, p)
		}
	}
	return out
}

func (c *Collection) ByTag(tag string) []model.Post {
	out := make([]model.Post, 0)
	for _, p := range c.posts {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Tags returns every tag in use, sorted and de-duplicated.
func (c *Collection) Tags() []string {
	seen := make(map[string]struct{})
	for _, p := range c.posts {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Render converts the post body to HTML. Unknown slugs and conversion
// failures yield "".
func (c *Collection) Render(slug string) string {
	p, ok := c.BySlug(slug)
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(p.Content), &buf); err != nil {
		appLog.Error("markdown render failed", err, "slug", slug)
		return ""
	}
	return buf.String()
}
