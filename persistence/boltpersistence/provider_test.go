package boltpersistence_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/millrace/weir/persistence"
	. "github.com/millrace/weir/persistence/boltpersistence"
	"github.com/millrace/weir/persistence/internal/providertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"
)

var _ = Describe("type FileProvider", func() {
	var dir string

	providertest.Declare(
		func(ctx context.Context, in providertest.In) providertest.Out {
			var err error
			dir, err = os.MkdirTemp("", "weir-boltpersistence-*")
			Expect(err).ShouldNot(HaveOccurred())

			p := &FileProvider{
				Path: filepath.Join(dir, "weir.db"),
			}

			return providertest.Out{
				NewProvider: func() persistence.Provider {
					return p
				},
			}
		},
		func() {
			if dir != "" {
				os.RemoveAll(dir)
			}
		},
	)
})

var _ = Describe("type Provider", func() {
	var (
		dir string
		db  *bbolt.DB
	)

	providertest.Declare(
		func(ctx context.Context, in providertest.In) providertest.Out {
			var err error
			dir, err = os.MkdirTemp("", "weir-boltpersistence-*")
			Expect(err).ShouldNot(HaveOccurred())

			db, err = bbolt.Open(
				filepath.Join(dir, "weir.db"),
				0600,
				bbolt.DefaultOptions,
			)
			Expect(err).ShouldNot(HaveOccurred())

			p := &Provider{
				DB: db,
			}

			return providertest.Out{
				NewProvider: func() persistence.Provider {
					return p
				},
			}
		},
		func() {
			if db != nil {
				db.Close()
			}

			if dir != "" {
				os.RemoveAll(dir)
			}
		},
	)
})
