package submit

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

var (
	categoryNames = []string{"serving", "passing", "setting", "attacking", "blocking", "defense"}
	feedback      = []string{"Consistent", "Needs work", "Excellent under pressure", "Improving", "Solid fundamentals"}
)

// randomIndex returns a random index below n using crypto/rand.
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// GenerateBatch builds a synthetic batch of n reports. The last repeat
// reports reuse the id of an earlier report so the batch exercises
// duplicate detection.
func GenerateBatch(n, repeat int) (Payload, error) {
	if n < 1 {
		return Payload{}, fmt.Errorf("generated batch needs at least one report, got %d", n)
	}
	if repeat < 0 || repeat >= n {
		repeat = 0
	}

	now := time.Now().UTC()
	ingestionID := uuid.NewString()
	reports := make([]map[string]any, n)
	for i := range reports {
		id := uuid.NewString()
		if i >= n-repeat {
			id = reports[randomIndex(n-repeat)]["reportId"].(string)
		}
		categories := make(map[string]any, 2)
		for len(categories) < 2 {
			categories[categoryNames[randomIndex(len(categoryNames))]] = feedback[randomIndex(len(feedback))]
		}
		reports[i] = map[string]any{
			"reportId":        id,
			"playerId":        "player-" + uuid.NewString()[:8],
			"coachId":         "coach-generated",
			"reportTimestamp": now.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
			"categories":      categories,
		}
	}

	body, err := json.Marshal(map[string]any{
		"ingestionId":  ingestionID,
		"sourceBucket": "generated",
		"sourceKey":    "generated/" + ingestionID + ".csv",
		"reports":      reports,
	})
	if err != nil {
		return Payload{}, fmt.Errorf("failed to marshal generated batch: %w", err)
	}
	return Payload{Name: "generated:" + ingestionID, Body: body}, nil
}
