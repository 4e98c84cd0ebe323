package triage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDirectory_Find(t *testing.T) {
	dir := NewMockDirectory(42)

	for run := 0; run < 20; run++ {
		docs := dir.Find("Neurologist", "Karnataka", "Bengaluru")

		require.Len(t, docs, DoctorsPerQuery)
		ids := map[int]bool{}
		for i, d := range docs {
			if i > 0 {
				assert.GreaterOrEqual(t, docs[i-1].Rating, d.Rating)
			}
			ids[d.ID] = true
			assert.Equal(t, "Neurologist", d.Specialty)
			assert.Equal(t, "Bengaluru, Karnataka", d.Location)
			assert.True(t, len(d.Name) > 4 && d.Name[:4] == "Dr. ", d.Name)
			assert.Contains(t, hospitals, d.Hospital)
			assert.GreaterOrEqual(t, d.Rating, 4.0)
			assert.LessOrEqual(t, d.Rating, 5.0)
			assert.GreaterOrEqual(t, d.Experience, 5)
			assert.Less(t, d.Experience, 25)
			assert.GreaterOrEqual(t, d.ConsultationFee, 500)
			assert.Less(t, d.ConsultationFee, 2000)
		}
		assert.Len(t, ids, DoctorsPerQuery)
	}
}

func TestMockDirectory_ConcurrentUse(t *testing.T) {
	dir := NewMockDirectory(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, dir.Find("Cardiologist", "Goa", "Panaji"), DoctorsPerQuery)
		}()
	}
	wg.Wait()
}
