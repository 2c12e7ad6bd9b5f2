// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

//go:build integration

package account_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/ironvale/playerstore/internal/account"
	"github.com/ironvale/playerstore/internal/auth"
)

var _ = Describe("Durability", func() {
	var (
		ctx context.Context
		env *testEnv
	)

	BeforeEach(func() {
		ctx = context.Background()
		env = setupEnv()

		_, err := env.svc.Login(ctx, "Bob", "pw1", "")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		env.cleanup()
	})

	Describe("Write protocol", func() {
		It("keeps the previous generation as a backup", func() {
			authPath := env.paths.AuthPath("bob")
			before, err := os.ReadFile(authPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.svc.ChangePassword(ctx, "bob", "pw1", "pw2")).To(Succeed())

			backup, err := os.ReadFile(authPath + ".bak")
			Expect(err).NotTo(HaveOccurred())
			Expect(backup).To(Equal(before))
		})

		It("ignores a stale temp file from an interrupted write", func() {
			playerPath := env.paths.PlayerPath("bob")
			Expect(os.WriteFile(playerPath+".tmp", []byte("partial"), 0o600)).To(Succeed())

			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))
		})
	})

	Describe("Read recovery", func() {
		It("recovers a corrupt auth record from its backup and repairs the main file", func() {
			authPath := env.paths.AuthPath("bob")
			Expect(env.svc.ChangePassword(ctx, "bob", "pw1", "pw2")).To(Succeed())

			// Main now holds the pw2 generation; clobber it.
			Expect(os.WriteFile(authPath, []byte("xx"), 0o600)).To(Succeed())

			// The backup holds the pw1 generation, so pw1 is granted.
			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))

			// The recovery rewrote the main file in place.
			repaired, err := os.ReadFile(authPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.Validate(repaired)).To(Succeed())
		})

		It("fails when both copies are corrupt", func() {
			authPath := env.paths.AuthPath("bob")
			Expect(env.svc.ChangePassword(ctx, "bob", "pw1", "pw2")).To(Succeed())

			Expect(os.WriteFile(authPath, []byte("xx"), 0o600)).To(Succeed())
			Expect(os.WriteFile(authPath+".bak", []byte("yy"), 0o600)).To(Succeed())

			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("User id counter", func() {
		It("never reuses ids across restarts", func() {
			env.reopen()

			result, err := env.svc.Login(ctx, "Carol", "pw", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Identity.UserID).To(Equal(int32(1001)))

			env.reopen()

			result, err = env.svc.Login(ctx, "Dave", "pw", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Identity.UserID).To(Equal(int32(1002)))
		})

		It("never reuses an id after the account is deleted", func() {
			Expect(env.svc.DeletePlayer(ctx, "bob")).To(Succeed())

			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.NewAccount).To(BeTrue())
			Expect(result.Identity.UserID).To(Equal(int32(1001)))
		})
	})

	Describe("Integrity scan", func() {
		It("repairs recoverable records and reports the rest", func() {
			_, err := env.svc.Login(ctx, "Carol", "pw", "")
			Expect(err).NotTo(HaveOccurred())

			// Bob: recoverable corruption (backup exists after a rewrite).
			Expect(env.svc.ChangePassword(ctx, "bob", "pw1", "pw2")).To(Succeed())
			Expect(os.WriteFile(env.paths.AuthPath("bob"), []byte("xx"), 0o600)).To(Succeed())

			// Carol: missing player save.
			Expect(os.Remove(env.paths.PlayerPath("carol"))).To(Succeed())

			report, err := env.svc.ScanAuthRecords(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Checked).To(Equal(2))
			Expect(report.Repaired).To(Equal(1))
			Expect(report.Corrupt).To(BeZero())
			Expect(report.Inconsistent).To(Equal(1))
			Expect(report.InconsistentUsers).To(ConsistOf("carol"))
		})
	})
})
