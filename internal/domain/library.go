package domain

// Book is an entry of the public-domain reading library.
type Book struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Theme       string `json:"theme" yaml:"theme"`
	Category    string `json:"category" yaml:"category"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Track is an ambient audio track. Duration is in seconds.
type Track struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Src         string `json:"src" yaml:"src"`
	Category    string `json:"category" yaml:"category"`
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description,omitempty" yaml:"description"`
	Duration    int    `json:"duration,omitempty" yaml:"duration"`
}

// Plan intervals.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Plan is a subscription offer.
type Plan struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Price     float64  `json:"price" yaml:"price"`
	Currency  string   `json:"currency" yaml:"currency"`
	Interval  string   `json:"interval" yaml:"interval"`
	Features  []string `json:"features" yaml:"features"`
	TrialDays int      `json:"trial_days,omitempty" yaml:"trial_days"`
	Popular   bool     `json:"popular,omitempty" yaml:"popular"`
}

// ConversationTheme is a topic the user can pick before chatting.
type ConversationTheme struct {
	ID string `json:"id" yaml:"id"`
	FR string `json:"fr" yaml:"fr"`
	EN string `json:"en" yaml:"en"`
}

// Label returns the theme name in lang. Languages without a translation get the id.
func (t ConversationTheme) Label(lang Language) string {
	switch lang {
	case LanguageFR:
		if t.FR != "" {
			return t.FR
		}
	case LanguageEN:
		if t.EN != "" {
			return t.EN
		}
	}
	return t.ID
}
