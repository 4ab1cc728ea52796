// Package source loads raw quiz logs from text files, chat exports, PDFs and URLs
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedEncoding is returned for input that is not valid UTF-8
	ErrUnsupportedEncoding = errors.New("input is not valid UTF-8")
	// ErrMalformedPDF is returned when a .pdf input cannot be decoded
	ErrMalformedPDF = errors.New("malformed PDF")
)

// Client is used for http(s) sources
var Client = &http.Client{
	Timeout: 30 * time.Second,
}

// IsURL reports whether location should be fetched over HTTP
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Read loads the raw text of a quiz log. The loader is picked from the
// location: URLs are fetched, .html/.htm files are treated as chat exports,
// .pdf files have their text extracted, anything else is read as UTF-8 text.
func Read(ctx context.Context, location string) (string, error) {
	if IsURL(location) {
		body, err := FetchURL(ctx, location)
		if err != nil {
			return "", err
		}
		if looksLikeHTML(body) {
			return ExtractChatText(strings.NewReader(body))
		}
		return checkText(location, []byte(body))
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".html", ".htm":
		f, err := os.Open(location)
		if err != nil {
			return "", fmt.Errorf("error opening chat export: %w", err)
		}
		defer f.Close()
		return ExtractChatText(f)
	case ".pdf":
		return ReadPDFText(location)
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return checkText(location, data)
	}
}

func checkText(location string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", location, ErrUnsupportedEncoding)
	}
	return string(data), nil
}

func looksLikeHTML(body string) bool {
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<head") || strings.Contains(head, "<body")
}

// FetchURL downloads a raw log and returns it as a string
func FetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error building request: %w", err)
	}

	resp, err := Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-200 status code: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	return string(body), nil
}

// ExtractChatText pulls message text out of an HTML chat export, one
// message after another, with <br> turned into line breaks. Pages with no
// message blocks fall back to the body text.
func ExtractChatText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("error parsing chat export: %w", err)
	}

	doc.Find("br").ReplaceWithHtml("\n")

	var messages []string
	doc.Find("div.message div.text").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			messages = append(messages, text)
		}
	})

	if len(messages) == 0 {
		return doc.Find("body").Text(), nil
	}
	// Blank line between messages keeps quiz posts apart
	return strings.Join(messages, "\n\n") + "\n", nil
}

// ReadPDFText extracts the plain text of a chat printed to PDF. Malformed
// files are reported as errors, including those the pdf reader panics on.
func ReadPDFText(path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrMalformedPDF, r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPDF, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("error extracting text from PDF: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("error reading text from PDF: %w", err)
	}
	return sb.String(), nil
}
