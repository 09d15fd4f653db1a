package gamification

import (
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ExplorerBadge              = "explorer"
	RightsGuardianBadge        = "rights-guardian"
	ActivityHeroBadge          = "activity-hero"
	AIElderApprenticeBadge     = "ai-elder-apprentice"
	SustainabilityStewardBadge = "sustainability-steward"
	QuantumDefenderBadge       = "quantum-defender"
)

// ExplorerModules is the number of completed modules unlocking the explorer
// badge.
const ExplorerModules = 3

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// BadgeStatus is a badge as seen by one learner.
type BadgeStatus struct {
	Badge
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type BadgeScanner interface {
	Badge() Badge

	// Scan reports whether the state earns the badge.
	Scan(s State) bool
}

type explorerScanner struct{}

func (explorerScanner) Badge() Badge {
	return Badge{
		ID:          ExplorerBadge,
		Name:        "Explorer Badge",
		Description: "Completed 3 modules",
		Icon:        "/badges/explorer.svg",
	}
}

func (explorerScanner) Scan(s State) bool {
	return len(s.ModulesCompleted) >= ExplorerModules
}

// moduleScanner unlocks its badge once a completed module id contains
// keyword.
type moduleScanner struct {
	badge   Badge
	keyword string
}

func (m moduleScanner) Badge() Badge {
	return m.badge
}

func (m moduleScanner) Scan(s State) bool {
	for _, module := range s.ModulesCompleted {
		if strings.Contains(module, m.keyword) {
			return true
		}
	}

	return false
}

func DefaultScanners() []BadgeScanner {
	return []BadgeScanner{
		explorerScanner{},
		moduleScanner{keyword: "post", badge: Badge{
			ID:          RightsGuardianBadge,
			Name:        "Rights Guardian",
			Description: "Mastered PoST",
			Icon:        "/badges/rights-guardian.svg",
		}},
		moduleScanner{keyword: "poat", badge: Badge{
			ID:          ActivityHeroBadge,
			Name:        "Activity Hero",
			Description: "Mastered PoAT",
			Icon:        "/badges/activity-hero.svg",
		}},
		moduleScanner{keyword: "ai", badge: Badge{
			ID:          AIElderApprenticeBadge,
			Name:        "AI Elder Apprentice",
			Description: "Completed AI chapter",
			Icon:        "/badges/ai-elder.svg",
		}},
		moduleScanner{keyword: "sdg", badge: Badge{
			ID:          SustainabilityStewardBadge,
			Name:        "Sustainability Steward",
			Description: "SDG module completed",
			Icon:        "/badges/sustainability.svg",
		}},
		moduleScanner{keyword: "quantum", badge: Badge{
			ID:          QuantumDefenderBadge,
			Name:        "Quantum Defender",
			Description: "Post-quantum crypto module",
			Icon:        "/badges/quantum.svg",
		}},
	}
}

type BadgeManager struct {
	// Written only at initialization, read-only afterwards.
	scanners map[string]BadgeScanner
	order    []string
}

func NewBadgeManager(scanners ...BadgeScanner) *BadgeManager {
	manager := &BadgeManager{scanners: make(map[string]BadgeScanner)}
	for _, s := range scanners {
		id := s.Badge().ID
		if _, ok := manager.scanners[id]; !ok {
			manager.order = append(manager.order, id)
		}
		manager.scanners[id] = s
	}

	return manager
}

func (m *BadgeManager) Names() []string {
	names := maps.Keys(m.scanners)
	slices.Sort(names)
	return names
}

func (m *BadgeManager) Has(id string) bool {
	_, ok := m.scanners[id]
	return ok
}

// Earned returns the badges s qualifies for but has not unlocked yet, in
// registration order.
func (m *BadgeManager) Earned(s State) []string {
	earned := []string{}
	for _, id := range m.order {
		if !s.HasBadge(id) && m.scanners[id].Scan(s) {
			earned = append(earned, id)
		}
	}

	return earned
}

// Statuses lists every registered badge with its unlock state in s.
func (m *BadgeManager) Statuses(s State) []BadgeStatus {
	statuses := make([]BadgeStatus, 0, len(m.order))
	for _, id := range m.order {
		status := BadgeStatus{Badge: m.scanners[id].Badge()}
		if at, ok := s.Badges[id]; ok {
			at := at
			status.Unlocked = true
			status.UnlockedAt = &at
		}
		statuses = append(statuses, status)
	}

	return statuses
}
