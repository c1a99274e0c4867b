package db

import (
	"encoding/json"

	"github.com/Taraxa-project/taraxa-authdict/db/leveldb"
	"github.com/Taraxa-project/taraxa-authdict/db/memory"
	"github.com/Taraxa-project/taraxa-authdict/ethdb"
	"github.com/pkg/errors"
)

type Factory interface {
	NewInstance() (ethdb.Database, error)
}

var FactoryRegistry = map[string]func() Factory{
	"leveldb": func() Factory {
		return new(leveldb.Factory)
	},
	"memory": func() Factory {
		return new(memory.Factory)
	},
}

type FactoryType struct {
	Type string `json:"type"`
}

type FactoryOptions struct {
	Factory Factory `json:"options"`
}

// GenericFactory picks the concrete factory by its "type" and decodes
// "options" into it, e.g.
//
//	{"type": "leveldb", "options": {"file": "/tmp/nodes"}, "lru_cache": 4096}
type GenericFactory struct {
	FactoryType
	FactoryOptions
	LRUCacheSize int `json:"lru_cache"`
}

func (this *GenericFactory) NewInstance() (ethdb.Database, error) {
	ret, err := this.Factory.NewInstance()
	if err != nil || this.LRUCacheSize <= 0 {
		return ret, err
	}
	return ethdb.NewCachedDatabase(ret, this.LRUCacheSize)
}

func (this *GenericFactory) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &this.FactoryType); err != nil {
		return err
	}
	newFactory, ok := FactoryRegistry[this.Type]
	if !ok {
		return errors.New("Unknown db factory type: " + this.Type)
	}
	this.Factory = newFactory()
	var rest struct {
		Options      json.RawMessage `json:"options"`
		LRUCacheSize int             `json:"lru_cache"`
	}
	if err := json.Unmarshal(b, &rest); err != nil {
		return err
	}
	if len(rest.Options) != 0 {
		if err := json.Unmarshal(rest.Options, this.Factory); err != nil {
			return errors.Wrapf(err, "%s options", this.Type)
		}
	}
	this.LRUCacheSize = rest.LRUCacheSize
	return nil
}

// Parse reads a factory config; an empty config means an in-memory database.
func Parse(config string) (*GenericFactory, error) {
	if config == "" {
		config = `{"type": "memory"}`
	}
	ret := new(GenericFactory)
	if err := json.Unmarshal([]byte(config), ret); err != nil {
		return nil, errors.Wrap(err, "db config")
	}
	return ret, nil
}
