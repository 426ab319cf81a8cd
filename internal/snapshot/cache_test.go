package snapshot

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/fleetstatus/models"
)

func TestCache_ReadBeforePublish(t *testing.T) {
	c := New()

	s := c.Read()
	assert.True(t, s.IsEmpty())
	require.NotNil(t, s.Records)
	assert.Len(t, s.Records, 0)
}

func TestCache_PublishReplaces(t *testing.T) {
	c := New()

	c.Publish(models.FleetSnapshot{ID: "one", Records: []models.HostStatusRecord{{Name: "a"}}})
	assert.Equal(t, "one", c.Read().ID)

	c.Publish(models.FleetSnapshot{ID: "two", Records: []models.HostStatusRecord{{Name: "a"}, {Name: "b"}}})
	assert.Equal(t, "two", c.Read().ID)
	assert.Len(t, c.Records(), 2)
}

func TestCache_PublishNilRecords(t *testing.T) {
	c := New()
	c.Publish(models.FleetSnapshot{ID: "empty"})

	assert.NotNil(t, c.Records())
	assert.Equal(t, "empty", c.Read().ID)
}

// Readers must only ever see whole snapshots: every record in a snapshot
// carries that snapshot's ID as its name.
func TestCache_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	c := New()
	const hosts = 8

	var wg sync.WaitGroup
	done := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				s := c.Read()
				if s.IsEmpty() {
					continue
				}
				if !assert.Len(t, s.Records, hosts) {
					return
				}
				for _, rec := range s.Records {
					if !assert.Equal(t, s.ID, rec.Name) {
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("cycle-%d", i)
		records := make([]models.HostStatusRecord, hosts)
		for j := range records {
			records[j] = models.HostStatusRecord{Name: id}
		}
		c.Publish(models.FleetSnapshot{ID: id, Records: records})
	}

	close(done)
	wg.Wait()
}
