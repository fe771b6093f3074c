package util

import (
	"fmt"

	"pokerroom-server/internal/rng"
)

var adjectives = []string{
	"Lucky", "Bluffing", "Stoic", "Reckless", "Patient", "Silent", "Grinning", "Nervous", "Cunning", "Steady",
	"Wild", "Sly", "Bold", "Cautious", "Dapper", "Fearless", "Jolly", "Quiet", "Sharp", "Tricky",
	"Fast", "Slow", "Happy", "Fuzzy", "Grand", "Prime", "Charging", "Bouncing",
}

var animals = []string{
	"Shark", "Fish", "Whale", "Donkey", "Fox", "Owl", "Crow", "Badger", "Otter", "Tiger",
	"Bear", "Wolf", "Panda", "Hedgehog", "Okapi", "Armadillo", "Rhino", "Mandrill", "Bonobo", "Eagle",
}

// RandomName returns a display name made of an adjective and an animal
func RandomName(g rng.Generator) string {
	return fmt.Sprintf("%s %s", adjectives[g.Intn(len(adjectives))], animals[g.Intn(len(animals))])
}
