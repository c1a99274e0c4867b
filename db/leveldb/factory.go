package leveldb

import (
	"github.com/Taraxa-project/taraxa-authdict/ethdb"
	"github.com/pkg/errors"
)

type Factory struct {
	File    string `json:"file"`
	Cache   int    `json:"cache"`
	Handles int    `json:"handles"`
}

func (this *Factory) NewInstance() (ethdb.Database, error) {
	if this.File == "" {
		return nil, errors.New("leveldb: file is required")
	}
	return ethdb.NewLDBDatabase(this.File, this.Cache, this.Handles)
}
