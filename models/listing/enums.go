package listing

import "strings"

// Status is the lifecycle state of a listing
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusScheduled Status = "SCHEDULED"
	StatusCollected Status = "COLLECTED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the full state machine; anything absent is illegal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusCollected, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCollected, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCollected || s == StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func GetAllStatuses() []Status {
	return []Status{StatusPending, StatusScheduled, StatusCollected, StatusCancelled}
}

// ScrapType is the material category of a listing
type ScrapType string

const (
	ScrapIron        ScrapType = "IRON"
	ScrapCopper      ScrapType = "COPPER"
	ScrapAluminium   ScrapType = "ALUMINIUM"
	ScrapBrass       ScrapType = "BRASS"
	ScrapSteel       ScrapType = "STEEL"
	ScrapPlasticHDPE ScrapType = "PLASTIC_HDPE"
	ScrapPlasticPET  ScrapType = "PLASTIC_PET"
	ScrapPaper       ScrapType = "PAPER"
	ScrapCardboard   ScrapType = "CARDBOARD"
	ScrapBooks       ScrapType = "BOOKS"
	ScrapEWaste      ScrapType = "E_WASTE"
	ScrapGlass       ScrapType = "GLASS"
	ScrapMixedMetals ScrapType = "MIXED_METALS"
)

func GetAllScrapTypes() []ScrapType {
	return []ScrapType{
		ScrapIron,
		ScrapCopper,
		ScrapAluminium,
		ScrapBrass,
		ScrapSteel,
		ScrapPlasticHDPE,
		ScrapPlasticPET,
		ScrapPaper,
		ScrapCardboard,
		ScrapBooks,
		ScrapEWaste,
		ScrapGlass,
		ScrapMixedMetals,
	}
}

func (t ScrapType) IsValid() bool {
	for _, known := range GetAllScrapTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// DisplayName turns PLASTIC_HDPE into "Plastic Hdpe"
func (t ScrapType) DisplayName() string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
