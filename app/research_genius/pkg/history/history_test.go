package history

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSkipsExactDuplicates(t *testing.T) {
	h := New()

	assert.True(t, h.Add("quantum computing"))
	assert.True(t, h.Add("Quantum computing"))
	assert.False(t, h.Add("quantum computing"))
	assert.True(t, h.Add("fusion energy"))

	assert.Equal(t, []string{"quantum computing", "Quantum computing", "fusion energy"}, h.Items())
}

func TestItemsReturnsCopy(t *testing.T) {
	h := New()
	h.Add("a")

	items := h.Items()
	items[0] = "mutated"

	assert.Equal(t, []string{"a"}, h.Items())
}

func TestLabels(t *testing.T) {
	h := New()
	h.Add("short")
	h.Add(strings.Repeat("量", 40))

	labels := h.Labels()
	assert.Equal(t, "short...", labels[0])
	assert.Equal(t, strings.Repeat("量", 30)+"...", labels[1])
}

func TestConcurrentAdd(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Add("same topic")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.Len())
}
