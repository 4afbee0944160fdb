// Package identity derives the search terms used to look for a professional
// in free-form review text: name permutations and workplace descriptors.
package identity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

var streetPattern = regexp.MustCompile(`(?i)(\d+\s+[\w\s]+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Boulevard|Blvd))`)

// employerSuffixes are trailing qualifiers stripped one at a time to produce
// shorter forms of a business name that reviewers commonly use.
var employerSuffixes = []string{" Clinic", " Centre", " Center", " Health", " Wellness"}

// NameVariants returns every name form worth searching for, from formal
// registry spellings down to initial forms. The cross product of registered
// and common first/last names feeds each pattern, so "Jonathan"/"Jon" both
// contribute. Output is deduplicated and sorted.
func NameVariants(p model.Professional) []string {
	firsts := distinct(p.FirstName, p.CommonFirstName)
	lasts := distinct(p.LastName, p.CommonLastName)

	set := map[string]struct{}{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if len([]rune(v)) >= 2 {
			set[v] = struct{}{}
		}
	}

	for _, first := range firsts {
		add(first)
	}
	for _, last := range lasts {
		add(last)
	}

	for _, first := range firsts {
		for _, last := range lasts {
			if first == "" || last == "" {
				continue
			}
			add(first + " " + last)
			add(last + ", " + first)
			add(last + " " + first)
			add("Dr. " + first + " " + last)
			add("Dr " + first + " " + last)
			add(first + " " + last + ", RMT")
			add(first + " " + last + " RMT")

			fi := string([]rune(first)[0])
			li := string([]rune(last)[0])
			add(fi + ". " + last)
			add(first + " " + li + ".")
			add(fi + " " + last)
			add(first + " " + li)
		}
	}

	return sorted(set)
}

// LocationVariants returns the workplace descriptors for one practice
// location: the employer name, shortened employer forms, the city, and any
// street address embedded in the address text.
func LocationVariants(loc model.PracticeLocation) []string {
	set := map[string]struct{}{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if len([]rune(v)) >= 2 {
			set[v] = struct{}{}
		}
	}

	if loc.EmployerName != "" {
		add(loc.EmployerName)
		for _, suffix := range employerSuffixes {
			if strings.HasSuffix(loc.EmployerName, suffix) {
				add(strings.TrimSuffix(loc.EmployerName, suffix))
			}
		}
	}

	add(loc.City)

	if m := streetPattern.FindString(loc.Address); m != "" {
		add(m)
	}

	return sorted(set)
}

func distinct(values ...string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if strings.EqualFold(seen, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
