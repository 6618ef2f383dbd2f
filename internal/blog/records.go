package blog

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/blogadmin/internal/connector"
)

// Ref is a relation as the backend returns it.
type Ref struct {
	ID         string `mapstructure:"id"`
	OriginalID string `mapstructure:"originalId"`
	Name       string `mapstructure:"name"`
	Username   string `mapstructure:"username"`
}

// User is a typed users record.
type User struct {
	ID         string `mapstructure:"id"`
	OriginalID string `mapstructure:"originalId"`
	Username   string `mapstructure:"username"`
	FirstName  string `mapstructure:"firstName"`
	LastName   string `mapstructure:"lastName"`
	Email      string `mapstructure:"email"`
	IsActive   bool   `mapstructure:"isActive"`
	IsStaff    bool   `mapstructure:"isStaff"`
	DateJoined string `mapstructure:"dateJoined"`
}

// FullName is "Last, First", or whichever of the two is set.
func (u User) FullName() string {
	switch {
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	default:
		return u.LastName + ", " + u.FirstName
	}
}

// Section is a typed sections record.
type Section struct {
	ID             string `mapstructure:"id"`
	OriginalID     string `mapstructure:"originalId"`
	Name           string `mapstructure:"name"`
	Slug           string `mapstructure:"slug"`
	Position       int    `mapstructure:"position"`
	CounterEntries int    `mapstructure:"counterEntries"`
}

// Category is a typed categories record.
type Category struct {
	ID             string `mapstructure:"id"`
	OriginalID     string `mapstructure:"originalId"`
	Section        *Ref   `mapstructure:"section"`
	Name           string `mapstructure:"name"`
	Slug           string `mapstructure:"slug"`
	Position       int    `mapstructure:"position"`
	CounterEntries int    `mapstructure:"counterEntries"`
}

// Tag is a typed tags record.
type Tag struct {
	ID             string `mapstructure:"id"`
	OriginalID     string `mapstructure:"originalId"`
	Name           string `mapstructure:"name"`
	Slug           string `mapstructure:"slug"`
	CounterEntries int    `mapstructure:"counterEntries"`
}

// Entry is a typed entries record.
type Entry struct {
	ID           string `mapstructure:"id"`
	OriginalID   string `mapstructure:"originalId"`
	Title        string `mapstructure:"title"`
	Status       string `mapstructure:"status"`
	Date         string `mapstructure:"date"`
	Sticky       bool   `mapstructure:"sticky"`
	Section      *Ref   `mapstructure:"section"`
	Category     *Ref   `mapstructure:"category"`
	Tags         []Ref  `mapstructure:"tags"`
	Summary      string `mapstructure:"summary"`
	Body         string `mapstructure:"body"`
	Owner        *Ref   `mapstructure:"owner"`
	CreateDate   string `mapstructure:"createdate"`
	UpdateDate   string `mapstructure:"updatedate"`
	CounterLinks int    `mapstructure:"counterLinks"`
	CounterTags  int    `mapstructure:"counterTags"`
}

// Link is a typed entry link record.
type Link struct {
	ID          string `mapstructure:"id"`
	Entry       *Ref   `mapstructure:"entry"`
	URL         string `mapstructure:"url"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Position    int    `mapstructure:"position"`
}

// Decode converts a record into T. Numbers and strings convert into each
// other, since ids arrive as either depending on the field.
func Decode[T any](r connector.Record) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return out, fmt.Errorf("decoding %T: %w", out, err)
	}
	return out, nil
}
