package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deedchain/goapi/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	type PatchableListing struct {
		Price    *uint64 `bson:"price,omitempty"`
		Verified *bool   `bson:"verified,omitempty"`
		Location string  `bson:"location"`
		DocHash  string  `bson:"docHash"`
	}

	patchable := &PatchableListing{}
	patchable.Price = ptr.Uint64(0)
	patchable.Verified = ptr.Bool(true)
	patchable.DocHash = "QmYwAPJzv5CZsnA"

	updater, err := MakeBsonM(patchable)

	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			"price":    uint64(0),
			"verified": true,
			// field location is empty, so ignore
			"docHash": "QmYwAPJzv5CZsnA",
		},
		updater,
	)
}
