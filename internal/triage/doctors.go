package triage

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/kjstillabower/health-advisory-service/internal/models"
)

var (
	doctorSurnames = []string{
		"Sharma", "Patel", "Kumar", "Singh", "Reddy",
		"Gupta", "Verma", "Mehta", "Joshi", "Khan",
		"Agarwal", "Desai", "Iyer", "Nair", "Rao",
	}
	hospitals = []string{
		"Apollo Hospital", "Fortis Healthcare", "Max Hospital",
		"Manipal Hospital", "AIIMS", "Lilavati Hospital",
		"Kokilaben Hospital", "Jaslok Hospital", "Hinduja Hospital",
		"Breach Candy Hospital", "Medanta", "Columbia Asia",
	}
)

// DoctorsPerQuery is the fixed length of every doctor listing.
const DoctorsPerQuery = 10

// MockDirectory fabricates doctor listings. Safe for concurrent use.
type MockDirectory struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockDirectory seeds the directory; seed 0 uses the current time.
func NewMockDirectory(seed int64) *MockDirectory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockDirectory{rng: rand.New(rand.NewSource(seed))}
}

// Find returns DoctorsPerQuery doctors of specialty near city, best rated first.
func (d *MockDirectory) Find(specialty, state, city string) []models.Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.Doctor, DoctorsPerQuery)
	for i := range out {
		out[i] = models.Doctor{
			ID:              i + 1,
			Name:            "Dr. " + doctorSurnames[d.rng.Intn(len(doctorSurnames))],
			Specialty:       specialty,
			Rating:          math.Round((4.0+d.rng.Float64())*10) / 10,
			Experience:      int(5 + d.rng.Float64()*20),
			Location:        city + ", " + state,
			Hospital:        hospitals[d.rng.Intn(len(hospitals))],
			Available:       d.rng.Float64() > 0.3,
			ConsultationFee: int(500 + d.rng.Float64()*1500),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}
