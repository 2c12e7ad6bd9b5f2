// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

//go:build integration

package account_test

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/ironvale/playerstore/internal/account"
	"github.com/ironvale/playerstore/internal/store"
)

func TestAccount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Account Persistence Integration Suite")
}

// testSave is a small structured player save used across the suite.
type testSave struct {
	X, Y, Z   int32
	RunEnergy uint8
}

func (s *testSave) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, v := range []int32{s.X, s.Y, s.Z} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	if err := buf.WriteByte(s.RunEnergy); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *testSave) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	for _, v := range []*int32{&s.X, &s.Y, &s.Z} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return err
		}
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	s.RunEnergy = b
	return nil
}

func newTestSave(_ account.Identity) account.PlayerSave {
	d := account.DefaultTable
	return &testSave{
		X:         int32(d.SpawnX),
		Y:         int32(d.SpawnY),
		Z:         int32(d.SpawnZ),
		RunEnergy: uint8(d.RunEnergy),
	}
}

// testEnv is one isolated data root plus a service over it.
type testEnv struct {
	dataDir string
	paths   *store.Paths
	svc     *account.Service
}

func setupEnv() *testEnv {
	dir, err := os.MkdirTemp("", "playerstore-it-*")
	Expect(err).NotTo(HaveOccurred())

	env := &testEnv{dataDir: dir}
	env.svc = openService(dir)
	env.paths = store.NewPaths(dir)
	return env
}

// reopen builds a fresh service over the same data root, simulating a
// process restart.
func (e *testEnv) reopen() {
	e.svc = openService(e.dataDir)
}

func (e *testEnv) cleanup() {
	Expect(os.RemoveAll(e.dataDir)).To(Succeed())
}

func openService(dataDir string) *account.Service {
	logger := slog.New(slog.DiscardHandler)
	svc, err := account.NewService(account.Config{
		Paths:   store.NewPaths(dataDir),
		Files:   store.New(logger, nil),
		NewSave: newTestSave,
		Logger:  logger,
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(svc.Init()).To(Succeed())
	return svc
}
