package malimport

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

// ErrFormat marks a structurally invalid upload: wrong root element, broken
// XML, or no <anime> records at all.
var ErrFormat = errors.New("this doesn't appear to be a MAL export file")

// statusMap fixes the MAL status labels we accept. Labels outside this set
// leave Record.Status empty; the reconciler silently skips those records,
// matching the long-standing importer behavior.
var statusMap = map[string]string{
	"Completed":     models.StatusCompleted,
	"Watching":      models.StatusWatching,
	"Plan to Watch": models.StatusPlanToWatch,
	"Dropped":       models.StatusDropped,
	"On-Hold":       models.StatusOnHold,
}

// Record is one parsed <anime> element. Status is the mapped internal label,
// or "" when the export used a label we don't recognize.
type Record struct {
	MALID        int64
	Title        string
	Status       string
	Score        *int
	WatchedEps   *int
	StartDate    *time.Time
	FinishDate   *time.Time
	RewatchCount int
}

type malExport struct {
	XMLName xml.Name   `xml:"myanimelist"`
	Anime   []malAnime `xml:"anime"`
}

type malAnime struct {
	SeriesID       string `xml:"series_animedb_id"`
	SeriesTitle    string `xml:"series_title"`
	MyStatus       string `xml:"my_status"`
	MyScore        string `xml:"my_score"`
	MyWatchedEps   string `xml:"my_watched_episodes"`
	MyTimesWatched string `xml:"my_times_watched"`
	MyStartDate    string `xml:"my_start_date"`
	MyFinishDate   string `xml:"my_finish_date"`
}

// Parse decodes a MAL XML export. The decoder is strict and carries no entity
// table; encoding/xml never processes DTD entity definitions, so nested
// entity expansion ("billion laughs") cannot occur — such documents fail with
// a syntax error and surface as ErrFormat.
func Parse(data []byte) ([]Record, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var doc malExport
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(doc.Anime) == 0 {
		return nil, ErrFormat
	}

	records := make([]Record, 0, len(doc.Anime))
	for _, a := range doc.Anime {
		id, err := strconv.ParseInt(strings.TrimSpace(a.SeriesID), 10, 64)
		if err != nil || id <= 0 {
			continue // no usable external ID
		}
		rawStatus := strings.TrimSpace(a.MyStatus)
		if rawStatus == "" {
			continue // no status at all
		}

		rec := Record{
			MALID:      id,
			Title:      strings.TrimSpace(a.SeriesTitle),
			Status:     statusMap[rawStatus],
			Score:      parseScore(a.MyScore),
			WatchedEps: parseOptionalInt(a.MyWatchedEps),
			StartDate:  parseDate(a.MyStartDate),
			FinishDate: parseDate(a.MyFinishDate),
		}
		if n := parseOptionalInt(a.MyTimesWatched); n != nil && *n > 0 {
			rec.RewatchCount = *n
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseScore treats MAL's "0" sentinel (and anything unparseable) as
// unscored.
func parseScore(raw string) *int {
	n := parseOptionalInt(raw)
	if n == nil || *n == 0 {
		return nil
	}
	return n
}

func parseOptionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// parseDate reads MAL's YYYY-MM-DD format. The "0000-00-00" sentinel and any
// unparseable value mean "absent", never an error.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0000-00-00" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
