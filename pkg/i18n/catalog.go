// Package i18n holds the widget string catalogue.
package i18n

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Date layouts used by the widget.
const (
	ShortDateLayout = "Mon 02 January 15:04"
	LongDateLayout  = "Monday 02 January 2006 15:04"
)

// Catalog resolves widget strings for a single locale.
type Catalog struct {
	trans ut.Translator
}

var english = map[string]string{
	"blocktitle":      "Social flow",
	"nodata":          "No data available, come back later or modify selection options",
	"osotext":         "Reference period",
	"csotext":         "Courses",
	"tsotext":         "Actions",
	"insotext":        "Number of lines",
	"helpbuttontext":  "Help",
	"save":            "Save",
	"close":           "Close",
	"window_14":       "2 weeks",
	"window_7":        "1 week",
	"window_3":        "3 days",
	"window_1":        "1 day",
	"type_consult":    "Consultation",
	"type_contrib":    "Contribution",
	"type_both":       "Both",
	"consult":         "Consultation",
	"contrib":         "Contribution",
	"done":            "Done",
	"todo":            "To do",
	"restricted":      "No access",
	"nextupdate":      "Next update : ",
	"limitdate":       "Deadline : ",
	"latedate":        "Late ! Closing : ",
	"closed":          "Closed ! ",
	"surveytextintro": "Do not forget to ",
	"surveytextlink":  "give us your opinion on social feed",
	"surveytextend":   ".",
	"helptext": `<p>The social feed exploits the traces of student activities in the platform to aggregate them in an anonymised way and offer a view of the list of resources and activities that most engage the attention of students. This tool has been developed to support students' learning and help them set goals for themselves on a daily basis.</p>
<p>The tool's customisation options are as follows: <ul>
<li>choose the reference period from 1 day to 2 weeks, to be personalised according to your relationship to deadlines,</li>
<li>operate a selection of courses taken, to be personalised according to your expectations of each course,</li>
<li>display actions related to consultations (such as watching a video), contributions (such as submitting an assignment), or both,</li>
<li>choose the number of lines displayed in the block (from 5 to 100).</li>
</ul></p>
<p>Some resources or activities appear grayed out in the list because they are configured with a restriction and you can not access them. Therefore, you should not take these items into account.</p>
<p>Teachers also have access to the social flow block with agglomerated student data.</p>
<p>The data recorded to display the social feed block is cleaned every night to keep only the data that is strictly necessary.</p>`,

	"modulename_assign":      "Assignment",
	"modulename_book":        "Book",
	"modulename_chat":        "Chat",
	"modulename_choice":      "Choice",
	"modulename_data":        "Database",
	"modulename_feedback":    "Feedback",
	"modulename_folder":      "Folder",
	"modulename_forum":       "Forum",
	"modulename_glossary":    "Glossary",
	"modulename_h5pactivity": "H5P",
	"modulename_imscp":       "IMS content package",
	"modulename_label":       "Text and media area",
	"modulename_lesson":      "Lesson",
	"modulename_lti":         "External tool",
	"modulename_page":        "Page",
	"modulename_quiz":        "Quiz",
	"modulename_resource":    "File",
	"modulename_scorm":       "SCORM package",
	"modulename_survey":      "Survey",
	"modulename_url":         "URL",
	"modulename_wiki":        "Wiki",
	"modulename_workshop":    "Workshop",
}

// NewEnglish builds the English catalogue.
func NewEnglish() (*Catalog, error) {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator(locale.Locale())
	for key, text := range english {
		if err := trans.Add(key, text, false); err != nil {
			return nil, fmt.Errorf("register string %s: %w", key, err)
		}
	}
	return &Catalog{trans: trans}, nil
}

// MustEnglish is NewEnglish for package initialisation and tests.
func MustEnglish() *Catalog {
	c, err := NewEnglish()
	if err != nil {
		panic(err)
	}
	return c
}

// T returns the string registered under key, or the key itself when missing.
func (c *Catalog) T(key string, params ...string) string {
	if c == nil || c.trans == nil {
		return key
	}
	s, err := c.trans.T(key, params...)
	if err != nil {
		return key
	}
	return s
}

// ModuleName returns the localised name of an activity type such as "assign".
func (c *Catalog) ModuleName(module string) string {
	key := "modulename_" + module
	if s := c.T(key); s != key {
		return s
	}
	if module == "" {
		return module
	}
	return strings.ToUpper(module[:1]) + module[1:]
}

// ShortDate formats a deadline date.
func ShortDate(t time.Time) string {
	return t.Format(ShortDateLayout)
}

// LongDate formats the next update date.
func LongDate(t time.Time) string {
	return t.Format(LongDateLayout)
}
