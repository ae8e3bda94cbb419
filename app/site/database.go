package site

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSource serves a page snapshot stored in a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Database migrations applied", "path", path, "version", version, "dirty", dirty)

	return &SQLiteSource{db: db}, nil
}

// Import replaces the snapshot with the languages and pages of from and
// returns the number of pages stored.
func (s *SQLiteSource) Import(ctx context.Context, from Source) (int, error) {
	languages, err := from.Languages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read languages for import: %w", err)
	}

	pages, err := from.Pages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read pages for import: %w", err)
	}

	if err := s.Save(ctx, languages, pages); err != nil {
		return 0, err
	}
	return len(pages), nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Languages(ctx context.Context) ([]Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, url_prefix, is_default
		FROM languages
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get languages: %w", err)
	}
	defer rows.Close()

	var languages []Language
	for rows.Next() {
		var lang Language
		if err := rows.Scan(&lang.Code, &lang.URLPrefix, &lang.Default); err != nil {
			return nil, fmt.Errorf("failed to scan language row: %w", err)
		}
		languages = append(languages, lang)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating language rows: %w", err)
	}

	return languages, nil
}

func (s *SQLiteSource) Pages(ctx context.Context) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, template, visible, depth, is_home, modified_at, COALESCE(published_at, '')
		FROM pages
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	index := make(map[string]int)
	for rows.Next() {
		var page Page
		var modifiedAt, publishedAt string
		err := rows.Scan(&page.ID, &page.Path, &page.Template, &page.Visible, &page.Depth,
			&page.IsHomePage, &modifiedAt, &publishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}

		if page.ModifiedAt, err = time.Parse(time.RFC3339Nano, modifiedAt); err != nil {
			return nil, fmt.Errorf("invalid modified_at for page %s: %w", page.ID, err)
		}
		if publishedAt != "" {
			date, err := time.Parse(time.RFC3339Nano, publishedAt)
			if err != nil {
				return nil, fmt.Errorf("invalid published_at for page %s: %w", page.ID, err)
			}
			page.Date = &date
		}
		page.Contents = make(map[string]bool)

		index[page.ID] = len(pages)
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page rows: %w", err)
	}

	if err := s.loadContents(ctx, pages, index); err != nil {
		return nil, err
	}
	if err := s.loadImages(ctx, pages, index); err != nil {
		return nil, err
	}

	return pages, nil
}

func (s *SQLiteSource) loadContents(ctx context.Context, pages []Page, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `SELECT page_id, language FROM page_contents`)
	if err != nil {
		return fmt.Errorf("failed to get page contents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pageID, code string
		if err := rows.Scan(&pageID, &code); err != nil {
			return fmt.Errorf("failed to scan page content row: %w", err)
		}
		if i, ok := index[pageID]; ok {
			pages[i].Contents[code] = true
		}
	}

	return rows.Err()
}

func (s *SQLiteSource) loadImages(ctx context.Context, pages []Page, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.page_id, i.path, i.url,
		       COALESCE(m.language, ''), COALESCE(m.caption, ''), COALESCE(m.alt, '')
		FROM images i
		LEFT JOIN image_meta m ON m.image_id = i.id
		ORDER BY i.page_id, i.position, m.language
	`)
	if err != nil {
		return fmt.Errorf("failed to get images: %w", err)
	}
	defer rows.Close()

	lastID := int64(-1)
	for rows.Next() {
		var imageID int64
		var pageID, path, url, code, caption, alt string
		if err := rows.Scan(&imageID, &pageID, &path, &url, &code, &caption, &alt); err != nil {
			return fmt.Errorf("failed to scan image row: %w", err)
		}

		i, ok := index[pageID]
		if !ok {
			continue
		}

		if imageID != lastID {
			pages[i].Images = append(pages[i].Images, Image{Path: path, URL: url, Meta: make(map[string]ImageMeta)})
			lastID = imageID
		}
		if code != "" {
			images := pages[i].Images
			images[len(images)-1].Meta[code] = ImageMeta{Caption: caption, Alt: alt}
		}
	}

	return rows.Err()
}

// Save replaces the stored snapshot with the given languages and pages.
func (s *SQLiteSource) Save(ctx context.Context, languages []Language, pages []Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"image_meta", "images", "page_contents", "pages", "languages"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for position, lang := range languages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO languages (code, url_prefix, is_default, position)
			VALUES (?, ?, ?, ?)
		`, lang.Code, lang.URLPrefix, lang.Default, position)
		if err != nil {
			return fmt.Errorf("failed to store language %s: %w", lang.Code, err)
		}
	}

	for position, page := range pages {
		var publishedAt any
		if page.Date != nil {
			publishedAt = page.Date.Format(time.RFC3339Nano)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO pages (id, path, template, visible, depth, is_home, modified_at, published_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, page.ID, page.Path, page.Template, page.Visible, page.Depth, page.IsHomePage,
			page.ModifiedAt.Format(time.RFC3339Nano), publishedAt, position)
		if err != nil {
			return fmt.Errorf("failed to store page %s: %w", page.ID, err)
		}

		for code, exists := range page.Contents {
			if !exists {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO page_contents (page_id, language) VALUES (?, ?)`, page.ID, code); err != nil {
				return fmt.Errorf("failed to store content %s/%s: %w", page.ID, code, err)
			}
		}

		for imagePosition, image := range page.Images {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO images (page_id, path, url, position)
				VALUES (?, ?, ?, ?)
			`, page.ID, image.Path, image.URL, imagePosition)
			if err != nil {
				return fmt.Errorf("failed to store image for page %s: %w", page.ID, err)
			}
			imageID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get image id: %w", err)
			}

			for code, meta := range image.Meta {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO image_meta (image_id, language, caption, alt)
					VALUES (?, ?, ?, ?)
				`, imageID, code, meta.Caption, meta.Alt)
				if err != nil {
					return fmt.Errorf("failed to store image meta: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	slog.Info("Site snapshot stored", "languages", len(languages), "pages", len(pages))

	return nil
}
