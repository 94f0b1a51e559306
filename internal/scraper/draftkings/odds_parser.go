package draftkings

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/categories"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
)

// eventSelector matches one game accordion on a market page.
const eventSelector = "div.sportsbook-event-accordion__wrapper"

// outcomePattern matches a rendered outcome cell like "O 0.5+800" or
// "U 1.5−110". The site renders negative prices with U+2212, not a hyphen.
var outcomePattern = regexp.MustCompile(`^([OU])\s(\d+\.\d+)([+\x{2212}]\d+)$`)

// teamBoundary finds the glue point in concatenated team text like
// "WAS NationalsatSF Giants": the only lowercase-uppercase seam is at "sS".
var teamBoundary = regexp.MustCompile(`[a-z][A-Z]`)

type eventHeader struct {
	HomeTeam      string
	AwayTeam      string
	GameDate      string
	GameTimeLocal string
	GameTimeUTC   string
}

// OddsParser extracts player prop records from a rendered market page.
// It never fails: listings it cannot make sense of are skipped and an
// unusable page yields no records.
type OddsParser struct {
	loc *time.Location
	now func() time.Time
}

func NewOddsParser() *OddsParser {
	return &OddsParser{
		loc: time.Local,
		now: time.Now,
	}
}

// Parse walks every game accordion on the page and returns one record per
// playable outcome, tagged with the job's category pair and collection time.
func (p *OddsParser) Parse(html string, job models.FetchJob) []models.OddsRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Debug("draftkings: unreadable page", "subcategory", job.Subcategory, "error", err)
		return nil
	}

	collected := p.now()
	collectedLocal := collected.Format("2006-01-02 15:04:05")
	collectedUTC := collected.UTC().Format("2006-01-02 15:04")
	category := categories.Underscored(job.Category)
	subcategory := categories.Underscored(job.Subcategory)

	var records []models.OddsRecord

	doc.Find(eventSelector).Each(func(_ int, event *goquery.Selection) {
		header, ok := p.eventInfo(event)
		if !ok {
			slog.Debug("draftkings: skip event (unparseable header)", "subcategory", job.Subcategory)
			return
		}

		table := event.Find("table").First()
		if table.Length() == 0 {
			slog.Debug("draftkings: skip event (no market table)",
				"subcategory", job.Subcategory, "home", header.HomeTeam, "away", header.AwayTeam)
			return
		}

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return // column header row
			}
			player := playerName(row.Find("th").First().Text())
			if player == "" {
				slog.Debug("draftkings: skip row (no player name)", "subcategory", job.Subcategory)
				return
			}
			cells := row.Find("td")
			if cells.Length() < 2 {
				slog.Debug("draftkings: skip row (missing outcome cells)",
					"subcategory", job.Subcategory, "player", player)
				return
			}

			sides := []struct {
				name string
				cell *goquery.Selection
			}{
				{models.SideOver, cells.Eq(0)},
				{models.SideUnder, cells.Eq(1)},
			}
			for _, side := range sides {
				line, price, ok := parseOutcome(side.cell.Text())
				if !ok {
					slog.Debug("draftkings: skip outcome (unrecognized format)",
						"subcategory", job.Subcategory, "player", player, "side", side.name)
					continue
				}
				records = append(records, models.OddsRecord{
					Player:         player,
					Line:           &line,
					Price:          price,
					Side:           side.name,
					HomeTeam:       header.HomeTeam,
					AwayTeam:       header.AwayTeam,
					GameTimeLocal:  header.GameTimeLocal,
					GameTimeUTC:    header.GameTimeUTC,
					GameDate:       header.GameDate,
					Category:       category,
					Subcategory:    subcategory,
					CollectedLocal: collectedLocal,
					CollectedUTC:   collectedUTC,
				})
			}
		})
	})

	return records
}

// eventInfo reads the accordion title bar. Its last three children are the
// glued team names, the game time and a toggle icon.
func (p *OddsParser) eventInfo(event *goquery.Selection) (eventHeader, bool) {
	kids := event.Find("div").First().Children()
	n := kids.Length()
	if n < 3 {
		return eventHeader{}, false
	}

	away, home, ok := splitTeams(kids.Eq(n - 3).Text())
	if !ok {
		return eventHeader{}, false
	}
	date, local, utc, ok := p.gameTimes(kids.Eq(n - 2).Text())
	if !ok {
		return eventHeader{}, false
	}

	return eventHeader{
		HomeTeam:      home,
		AwayTeam:      away,
		GameDate:      date,
		GameTimeLocal: local,
		GameTimeUTC:   utc,
	}, true
}

// splitTeams splits concatenated title text such as "WAS NationalsatSF Giants"
// into away ("WAS Nationals") and home ("SF Giants"). The away side always
// ends with the literal "at".
func splitTeams(text string) (away, home string, ok bool) {
	loc := teamBoundary.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	left := strings.TrimSpace(text[:loc[0]+1])
	if len(left) <= 2 {
		return "", "", false
	}
	away = strings.TrimSpace(left[:len(left)-2])
	home = strings.TrimSpace(text[loc[0]+1:])
	return away, home, away != "" && home != ""
}

// gameTimes converts a header like "Today 7:05PM" or "Tomorrow 1:10PM" into
// the game date plus local and UTC clock strings. The site shows times in
// the viewer's zone, so the configured location anchors the UTC conversion.
func (p *OddsParser) gameTimes(raw string) (date, local, utc string, ok bool) {
	parts := strings.Fields(raw)
	if len(parts) != 2 {
		return "", "", "", false
	}
	day, clock := parts[0], parts[1]

	gameDay := p.now().In(p.loc)
	if day == "Tomorrow" {
		gameDay = gameDay.AddDate(0, 0, 1)
	}
	date = gameDay.Format("2006-01-02")

	t, err := time.ParseInLocation("2006-01-02 3:04PM", date+" "+clock, p.loc)
	if err != nil {
		return "", "", "", false
	}
	return date, t.Format("15:04"), t.UTC().Format("15:04"), true
}

// playerName strips the "New" badge the site appends to freshly listed
// props. Header cells render as "<player><badge>" with no separator.
func playerName(text string) string {
	name := text
	if i := strings.Index(name, "New"); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// parseOutcome reads one outcome cell. Text is NFKC-normalized first since
// the site pads cells with non-breaking spaces.
func parseOutcome(text string) (line float64, price int, ok bool) {
	cleaned := strings.TrimSpace(norm.NFKC.String(text))
	m := outcomePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, 0, false
	}
	line, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	price, err = strconv.Atoi(strings.ReplaceAll(m[3], "−", "-"))
	if err != nil {
		return 0, 0, false
	}
	return line, price, true
}
