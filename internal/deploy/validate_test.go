package deploy_test

import (
	"errors"

	"instaforce.app/engine/internal/deploy"
	"instaforce.app/engine/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ValidateFile", func() {
	DescribeTable("content checks by extension",
		func(name, content string, valid bool) {
			_, err := deploy.ValidateFile(model.GeneratedFile{FileName: name, Content: content})
			if valid {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(deploy.ErrValidation))
			}
		},
		Entry("well formed metadata xml", "A.validationRule-meta.xml", `<?xml version="1.0" encoding="UTF-8"?>
<ValidationRule xmlns="http://soap.sforce.com/2006/04/metadata"><fullName>A</fullName></ValidationRule>`, true),
		Entry("latin-1 declaration", "A.xml", `<?xml version="1.0" encoding="ISO-8859-1"?><a>x</a>`, true),
		Entry("unterminated xml", "A.xml", "<not valid", false),
		Entry("mismatched tags", "A.object", "<a><b></a>", false),
		Entry("two roots", "A.layout", "<a/><b/>", false),
		Entry("text outside root", "A.profile", "hello <a/>", false),
		Entry("empty xml", "A.permissionset", "", false),
		Entry("comment before root", "A.xml", "<!-- generated --><a/>", true),
		Entry("apex class", "A.cls", "public class A {}", true),
		Entry("blank apex class", "A.cls", "  \n\t", false),
		Entry("blank trigger", "A.trigger", "", false),
		Entry("blank lwc js", "a.js", " ", false),
		Entry("blank aura app", "A.app", "", false),
		Entry("blank html is only a warning", "a.html", "", true),
		Entry("upper case extension", "A.XML", "<a>", false),
	)

	It("warns about empty files of other types", func() {
		warning, err := deploy.ValidateFile(model.GeneratedFile{FileName: "a.html", FilePath: "lwc/a"})
		Expect(err).NotTo(HaveOccurred())
		Expect(warning).To(ContainSubstring("lwc/a/a.html"))
	})

	It("reports the path and cause", func() {
		_, err := deploy.ValidateFile(model.GeneratedFile{FileName: "bad.xml", FilePath: "objects", Content: "<x"})

		var verr *deploy.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Path).To(Equal("objects/bad.xml"))
		Expect(verr.Reason).To(Equal("malformed XML"))
	})
})

var _ = Describe("StagingPath", func() {
	DescribeTable("path safety",
		func(dir, name, expected string) {
			p, err := deploy.StagingPath(model.GeneratedFile{FilePath: dir, FileName: name})
			if expected == "" {
				Expect(err).To(MatchError(deploy.ErrValidation))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(expected))
		},
		Entry("relative path", "force-app/main/default/classes", "A.cls", "force-app/main/default/classes/A.cls"),
		Entry("trailing slash", "force-app/main/default/classes/", "A.cls", "force-app/main/default/classes/A.cls"),
		Entry("backslashes", `force-app\main\default\classes`, "A.cls", "force-app/main/default/classes/A.cls"),
		Entry("empty directory", "", "A.cls", "A.cls"),
		Entry("harmless dot segments", "force-app/./x/../classes", "A.cls", "force-app/classes/A.cls"),
		Entry("absolute path", "/etc", "passwd", ""),
		Entry("windows drive", `C:\force-app`, "A.cls", ""),
		Entry("escape via dots", "force-app/../..", "A.cls", ""),
		Entry("escape via file name", "force-app", "../../A.cls", ""),
		Entry("missing file name", "force-app", "", ""),
	)
})

var _ = Describe("ValidateBatch", func() {
	It("rejects two files with the same destination", func() {
		_, err := deploy.ValidateBatch([]model.GeneratedFile{
			{FilePath: "classes", FileName: "A.cls", Content: "class A {}"},
			{FilePath: "classes/", FileName: "A.cls", Content: "class A {}"},
		})

		var verr *deploy.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Reason).To(ContainSubstring("collides"))
	})

	It("collects warnings from valid batches", func() {
		warnings, err := deploy.ValidateBatch([]model.GeneratedFile{
			{FilePath: "classes", FileName: "A.cls", Content: "class A {}"},
			{FilePath: "lwc/a", FileName: "a.html"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(HaveLen(1))
	})
})

var _ = Describe("DryRun", func() {
	It("stages into memory without touching disk", func() {
		paths, warnings, err := deploy.DryRun([]model.GeneratedFile{
			{FilePath: "force-app/main/default/classes", FileName: "A.cls", Content: "public class A {}"},
			{FilePath: "force-app/main/default/classes", FileName: "A.cls-meta.xml", Content: "<ApexClass/>"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
		Expect(paths).To(HaveLen(2))
		Expect(paths[0]).To(HaveSuffix("force-app/main/default/classes/A.cls"))
	})

	It("fails on the first invalid file", func() {
		_, _, err := deploy.DryRun([]model.GeneratedFile{{FileName: "A.xml", Content: "<"}})
		Expect(err).To(MatchError(deploy.ErrValidation))
	})
})
