package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kaamgarau/internal/core"
)

// Abbreviated month labels for the monthly spending chart. The Nepali side
// names the Bikram Sambat month that mostly overlaps each Gregorian month.
var monthAbbrev = [12]core.Label{
	{EN: "Jan", NP: "माघ"},
	{EN: "Feb", NP: "फागुन"},
	{EN: "Mar", NP: "चैत"},
	{EN: "Apr", NP: "वैशाख"},
	{EN: "May", NP: "जेठ"},
	{EN: "Jun", NP: "असार"},
	{EN: "Jul", NP: "साउन"},
	{EN: "Aug", NP: "भदौ"},
	{EN: "Sep", NP: "असोज"},
	{EN: "Oct", NP: "कार्तिक"},
	{EN: "Nov", NP: "मंसिर"},
	{EN: "Dec", NP: "पुष"},
}

// Full month names for the month selector.
var monthNames = [12]core.Label{
	{EN: "January", NP: "जनवरी"},
	{EN: "February", NP: "फेब्रुअरी"},
	{EN: "March", NP: "मार्च"},
	{EN: "April", NP: "अप्रिल"},
	{EN: "May", NP: "मे"},
	{EN: "June", NP: "जुन"},
	{EN: "July", NP: "जुलाई"},
	{EN: "August", NP: "अगस्ट"},
	{EN: "September", NP: "सेप्टेम्बर"},
	{EN: "October", NP: "अक्टोबर"},
	{EN: "November", NP: "नोभेम्बर"},
	{EN: "December", NP: "डिसेम्बर"},
}

var rangeLabels = map[TimeRange]core.Label{
	RangeDaily:   {EN: "Daily", NP: "दैनिक"},
	RangeMonthly: {EN: "Monthly", NP: "मासिक"},
	RangeYearly:  {EN: "Yearly", NP: "वार्षिक"},
}

var viewLabels = map[View]core.Label{
	ViewSpending: {EN: "Spending Overview", NP: "खर्च अवलोकन"},
	ViewCategory: {EN: "Category Distribution", NP: "श्रेणी वितरण"},
}

// MonthAbbrev returns the short bilingual label for m.
func MonthAbbrev(m time.Month) core.Label {
	if m < time.January || m > time.December {
		return core.Label{}
	}
	return monthAbbrev[m-1]
}

// MonthName returns the full bilingual month name for m.
func MonthName(m time.Month) core.Label {
	if m < time.January || m > time.December {
		return core.Label{}
	}
	return monthNames[m-1]
}

// MonthOptions lists the twelve selector entries in calendar order.
func MonthOptions() []core.Label {
	out := make([]core.Label, len(monthNames))
	copy(out, monthNames[:])
	return out
}

func TimeRangeLabel(r TimeRange) core.Label {
	return rangeLabels[r]
}

func ViewLabel(v View) core.Label {
	return viewLabels[v]
}

// DevanagariDigits rewrites ASCII digits in s as Devanagari numerals.
func DevanagariDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune('०' + (r - '0'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func dayLabel(day int) core.Label {
	s := strconv.Itoa(day)
	return core.Label{EN: s, NP: DevanagariDigits(s)}
}

func yearLabel(year int) core.Label {
	s := strconv.Itoa(year)
	return core.Label{EN: s, NP: s}
}

// Subtitle is the caption shown above a chart: "Showing Monthly data", or
// "Showing daily data for March" for the daily range. The Nepali daily caption
// leads with the year of q.Now in Devanagari digits.
func Subtitle(q Query) core.Label {
	if q.Range == RangeDaily {
		month := MonthName(q.Month)
		year := DevanagariDigits(strconv.Itoa(q.Now.Year()))
		return core.Label{
			EN: fmt.Sprintf("Showing daily data for %s", month.EN),
			NP: fmt.Sprintf("%s %s को लागि दैनिक डाटा", year, month.NP),
		}
	}
	rng := TimeRangeLabel(q.Range)
	return core.Label{
		EN: fmt.Sprintf("Showing %s data", rng.EN),
		NP: fmt.Sprintf("%s डाटा देखाउँदै", rng.NP),
	}
}
