package auth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/migration-tracker/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

var _ = Describe("PermissionEvaluator", func() {
	var evaluator auth.PermissionEvaluator

	BeforeEach(func() {
		evaluator = auth.NewEvaluator()
	})

	Context("admin role", func() {
		It("should authorize every action on every module without grant rows", func() {
			actions := []auth.Action{auth.ActionView, auth.ActionCreate, auth.ActionEdit, auth.ActionSave, auth.ActionDelete}
			for _, action := range actions {
				Expect(evaluator.Authorize(auth.RoleAdmin, nil, "anything", action)).To(BeTrue())
			}
		})

		It("should ignore grant rows even if present", func() {
			grants := []auth.Grant{{ModuleName: "application-portfolio"}}
			Expect(evaluator.Authorize(auth.RoleAdmin, grants, "application-portfolio", auth.ActionDelete)).To(BeTrue())
		})
	})

	Context("member role", func() {
		It("should deny every action when no grant exists for the module", func() {
			grants := []auth.Grant{{ModuleName: "server-inventory", CanView: true}}
			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionView)).To(BeFalse())
		})

		It("should check exactly the bit matching the action", func() {
			grants := []auth.Grant{{
				ModuleName: "application-portfolio",
				CanView:    true,
				CanCreate:  true,
			}}

			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionView)).To(BeTrue())
			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionCreate)).To(BeTrue())
			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionEdit)).To(BeFalse())
			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionSave)).To(BeFalse())
			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionDelete)).To(BeFalse())
		})

		It("should not treat one capability as implying another", func() {
			grants := []auth.Grant{{ModuleName: "application-portfolio", CanDelete: true}}

			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionDelete)).To(BeTrue())
			Expect(evaluator.Authorize(auth.RoleMember, grants, "application-portfolio", auth.ActionView)).To(BeFalse())
		})

		It("should deny callers with an empty grant list", func() {
			Expect(evaluator.Authorize(auth.RoleMember, nil, "application-portfolio", auth.ActionView)).To(BeFalse())
		})
	})
})
