/*
Package gconf provides a toolset for managing extension configuration.

Configuration is declared in the genesis file under the "conf" section,
keyed by the extension name:

	{
	  "conf": {
	    "escrow": {"domain_tag": "escrow", "record_reserve": 2}
	  }
	}

An extension reads its configuration once when it is constructed and keeps
it by value. The genesis initializer may additionally store it in the
database, so that it can be inspected later.
*/
package gconf

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Configuration is implemented by any extension configuration.
type Configuration interface {
	ledger.Persistent
	Validate() error
}

// Read parses opts["conf"][pkg] into given configuration and validates it.
func Read(opts ledger.Options, pkg string, conf Configuration) error {
	var confOptions ledger.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrapf(errors.ErrInput, "read conf: %s", err)
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(errors.ErrInput, "read configuration for %s: %s", pkg, err)
	}
	if err := conf.Validate(); err != nil {
		return errors.Wrapf(err, "configuration for %s", pkg)
	}
	return nil
}

// ReadStore is a subset of ledger.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of ledger.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save will Validate the object, before writing it to a special "configuration"
// singleton for that package name.
func Save(db Store, pkg string, src Configuration) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: %s", pkg)
	}
	raw, err := ledger.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "marshal: %s", pkg)
	}
	return db.Set(key(pkg), raw)
}

// Load reads the configuration singleton of given package.
func Load(db ReadStore, pkg string, dst Configuration) error {
	raw, err := db.Get(key(pkg))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "configuration of %s", pkg)
	}
	if err := ledger.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "unmarshal: %s", pkg)
	}
	return nil
}

// InitConfig will take opts["conf"][pkg], parse it into the given Configuration object
// validate it, and store under the proper key in the database
// Returns an error if anything goes wrong
func InitConfig(db Store, opts ledger.Options, pkg string, conf Configuration) error {
	if err := Read(opts, pkg, conf); err != nil {
		return err
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
