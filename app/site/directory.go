package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultTemplate = "default"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
	".webp": true,
	".avif": true,
}

// DirectorySource reads a Kirby style content folder. Folders prefixed with a
// number ("1-blog") are visible pages, all other folders are invisible ones.
type DirectorySource struct {
	root      string
	homePage  string
	languages []Language
}

func NewDirectorySource(root, homePage string, languages []Language) *DirectorySource {
	return &DirectorySource{
		root:      root,
		homePage:  homePage,
		languages: languages,
	}
}

func (s *DirectorySource) Root() string {
	return s.root
}

func (s *DirectorySource) Languages(ctx context.Context) ([]Language, error) {
	languages := make([]Language, len(s.languages))
	copy(languages, s.languages)
	return languages, nil
}

func (s *DirectorySource) Pages(ctx context.Context) ([]Page, error) {
	if _, err := os.Stat(s.root); err != nil {
		return nil, fmt.Errorf("content directory %s: %w", s.root, err)
	}

	var pages []Page
	if err := s.walk(ctx, s.root, "", 1, &pages); err != nil {
		return nil, err
	}

	slog.Debug("Content directory indexed", "root", s.root, "pages", len(pages))

	return pages, nil
}

type folder struct {
	name    string
	slug    string
	num     int
	visible bool
}

func (s *DirectorySource) walk(ctx context.Context, dir, parentID string, depth int, pages *[]Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	folders := make([]folder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		folders = append(folders, parseFolderName(entry.Name()))
	}
	sortFolders(folders)

	for _, f := range folders {
		id := f.slug
		if parentID != "" {
			id = parentID + "/" + f.slug
		}

		path := filepath.Join(dir, f.name)
		page, err := s.readPage(path, id, depth, f.visible)
		if err != nil {
			return err
		}
		*pages = append(*pages, page)

		if err := s.walk(ctx, path, id, depth+1, pages); err != nil {
			return err
		}
	}

	return nil
}

func (s *DirectorySource) readPage(dir, id string, depth int, visible bool) (Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read page %s: %w", id, err)
	}

	page := Page{
		ID:       id,
		Path:     id,
		Template: defaultTemplate,
		Visible:  visible,
		Depth:    depth,
		Contents: make(map[string]bool),
	}
	if id == s.homePage {
		page.IsHomePage = true
		page.Depth = 0
		page.Path = ""
	}

	files := make(map[string]os.DirEntry, len(entries))
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files[entry.Name()] = entry
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	defaultCode := ""
	if lang, ok := DefaultLanguage(s.languages); ok {
		defaultCode = lang.Code
	}

	imageMeta := make(map[string]map[string]ImageMeta)
	var imageNames []string
	var dateFields []map[string]string

	for _, name := range names {
		if isImageName(name) {
			imageNames = append(imageNames, name)
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".txt" {
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		target, code := base, ""
		if _, ok := files[base]; !ok || !isImageName(base) {
			target, code = splitLanguageSuffix(base)
		}
		if code == "" {
			code = defaultCode
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return Page{}, fmt.Errorf("failed to read %s: %w", filepath.Join(dir, name), err)
		}
		fields := parseFields(data)

		// Meta files carry the full image file name: "photo.jpg.en.txt"
		if _, ok := files[target]; ok && isImageName(target) {
			if imageMeta[target] == nil {
				imageMeta[target] = make(map[string]ImageMeta)
			}
			imageMeta[target][code] = ImageMeta{
				Caption: fields["caption"],
				Alt:     fields["alt"],
			}
			continue
		}

		page.Template = target
		page.Contents[code] = true

		if info, err := files[name].Info(); err == nil && info.ModTime().After(page.ModifiedAt) {
			page.ModifiedAt = info.ModTime()
		}

		if code == defaultCode {
			dateFields = append([]map[string]string{fields}, dateFields...)
		} else {
			dateFields = append(dateFields, fields)
		}
	}

	for _, fields := range dateFields {
		if date := parseDate(fields["date"]); date != nil {
			page.Date = date
			break
		}
	}

	if page.ModifiedAt.IsZero() {
		if info, err := os.Stat(dir); err == nil {
			page.ModifiedAt = info.ModTime()
		} else {
			page.ModifiedAt = time.Now()
		}
	}

	for _, name := range imageNames {
		page.Images = append(page.Images, Image{
			Path: filepath.ToSlash(filepath.Join(contentURLPrefix, s.relative(dir), name)),
			Meta: imageMeta[name],
		})
	}

	return page, nil
}

// contentURLPrefix is the public location of the content folder.
const contentURLPrefix = "content"

func (s *DirectorySource) relative(dir string) string {
	rel, err := filepath.Rel(s.root, dir)
	if err != nil {
		return dir
	}
	return rel
}

func isImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// splitLanguageSuffix turns "article.en" into ("article", "en").
func splitLanguageSuffix(base string) (string, string) {
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return base, ""
	}

	suffix := base[idx+1:]
	if !isLanguageCode(suffix) {
		return base, ""
	}

	code, err := CanonicalLanguageCode(suffix)
	if err != nil {
		return base, ""
	}
	return base[:idx], code
}

func parseFolderName(name string) folder {
	prefix, slug, ok := strings.Cut(name, "-")
	if ok && slug != "" {
		if num, err := strconv.Atoi(prefix); err == nil {
			return folder{name: name, slug: slug, num: num, visible: true}
		}
	}
	return folder{name: name, slug: name}
}

func sortFolders(folders []folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if a.visible != b.visible {
			return a.visible
		}
		if a.visible && a.num != b.num {
			return a.num < b.num
		}
		return a.slug < b.slug
	})
}
