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

var _ = Describe("Account Lifecycle", func() {
	var (
		ctx context.Context
		env *testEnv
	)

	BeforeEach(func() {
		ctx = context.Background()
		env = setupEnv()
	})

	AfterEach(func() {
		env.cleanup()
	})

	Describe("First contact", func() {
		It("registers the account and grants the login", func() {
			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))
			Expect(result.NewAccount).To(BeTrue())
			Expect(result.Identity.UserID).To(Equal(int32(1000)))
			Expect(result.Identity.Rights).To(Equal(auth.RightsPlayer))
		})

		It("hands out the default save", func() {
			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())

			save := result.Save.(*testSave)
			Expect(save.X).To(Equal(int32(account.DefaultTable.SpawnX)))
			Expect(save.Y).To(Equal(int32(account.DefaultTable.SpawnY)))
			Expect(save.RunEnergy).To(Equal(uint8(account.DefaultTable.RunEnergy)))
		})

		It("places the save in the shard tree and the auth record in the flat directory", func() {
			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())

			Expect(env.paths.PlayerPath("Bob")).To(BeARegularFile())
			Expect(env.paths.AuthPath("Bob")).To(BeARegularFile())
		})

		It("allocates sequential user ids", func() {
			for i, name := range []string{"alice", "bob", "carol"} {
				result, err := env.svc.Login(ctx, name, "pw", "")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Identity.UserID).To(Equal(int32(1000 + i)))
			}
		})
	})

	Describe("Authentication", func() {
		BeforeEach(func() {
			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("grants the correct password after a restart", func() {
			env.reopen()

			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))
			Expect(result.NewAccount).To(BeFalse())
		})

		It("denies a wrong password with a generic reason", func() {
			result, err := env.svc.Login(ctx, "Bob", "pw2", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusDenied))
			Expect(result.Reason).To(Equal("invalid username or password"))
		})

		It("treats usernames case-insensitively", func() {
			result, err := env.svc.Login(ctx, "BOB", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))
			Expect(result.NewAccount).To(BeFalse())
		})

		It("surfaces an auth record without a save as inconsistent", func() {
			Expect(os.Remove(env.paths.PlayerPath("Bob"))).To(Succeed())

			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).To(MatchError(account.ErrInconsistent))
		})
	})

	Describe("Bans", func() {
		BeforeEach(func() {
			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("blocks a banned user and admits them again after unban", func() {
			Expect(env.svc.BanUser("bob")).To(Succeed())

			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusBanned))

			Expect(env.svc.UnbanUser("bob")).To(Succeed())

			result, err = env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))
		})

		It("keeps bans across restarts", func() {
			Expect(env.svc.BanUser("bob")).To(Succeed())
			env.reopen()

			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusBanned))
		})

		It("blocks a banned address regardless of account", func() {
			Expect(env.svc.BanIP("10.0.0.7")).To(Succeed())

			result, err := env.svc.Login(ctx, "Carol", "pw", "10.0.0.7")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusBanned))
		})
	})

	Describe("Credential maintenance", func() {
		BeforeEach(func() {
			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists a password change across restarts", func() {
			Expect(env.svc.ChangePassword(ctx, "bob", "pw1", "pw2")).To(Succeed())
			env.reopen()

			denied, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(denied.Status).To(Equal(account.StatusDenied))

			granted, err := env.svc.Login(ctx, "Bob", "pw2", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(granted.Status).To(Equal(account.StatusGranted))
		})

		It("preserves credentials through a rights change", func() {
			Expect(env.svc.UpdateRights(ctx, "bob", auth.RightsAdmin)).To(Succeed())
			env.reopen()

			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(account.StatusGranted))
			Expect(result.Identity.Rights).To(Equal(auth.RightsAdmin))
		})
	})

	Describe("Saving state", func() {
		It("round-trips an updated save through a restart", func() {
			result, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())

			save := result.Save.(*testSave)
			save.X = 3300
			save.RunEnergy = 57
			env.svc.SavePlayer(ctx, "bob", save)

			env.reopen()

			result, err = env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
			loaded := result.Save.(*testSave)
			Expect(loaded.X).To(Equal(int32(3300)))
			Expect(loaded.RunEnergy).To(Equal(uint8(57)))
		})
	})

	Describe("Clans", func() {
		BeforeEach(func() {
			_, err := env.svc.Login(ctx, "Bob", "pw1", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the registered clan name across restarts", func() {
			Expect(env.svc.RegisterClan("bob", "The Ironclads")).To(Succeed())
			env.reopen()

			name, err := env.svc.LookupClan("Bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("The Ironclads"))
		})

		It("keeps the first registration when an owner registers twice", func() {
			Expect(env.svc.RegisterClan("bob", "First")).To(Succeed())
			Expect(env.svc.RegisterClan("bob", "Second")).To(Succeed())

			name, err := env.svc.LookupClan("bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("First"))
		})
	})
})
