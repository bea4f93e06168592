// Unit tests for the response validator.
package generation

import "testing"

const testContext = "[Context 1]\nCBCT stands for cone beam computed tomography, a 3D imaging technique used in dental diagnostics to capture detailed views of teeth and bone."

func validAnswer() *Answer {
	return &Answer{
		Kind:      "answer",
		Message:   "CBCT stands for cone beam computed tomography, a 3D imaging technique that captures detailed views of teeth and bone structures.",
		Citations: []string{"cone beam computed tomography"},
	}
}

func TestValidate_AcceptsGroundedAnswer(t *testing.T) {
	var v Validator
	if !v.Validate(validAnswer(), "what is cbct", testContext) {
		t.Error("expected a grounded answer to pass validation")
	}
}

func TestValidate_RejectsPlaceholders(t *testing.T) {
	var v Validator
	for _, msg := range []string{
		"You can find the answer at [INSERT LINK HERE] in our documentation portal.",
		"Please contact [your account manager] for details about this workflow today.",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod.",
	} {
		a := validAnswer()
		a.Message = msg
		if v.Validate(a, "where are the docs", testContext) {
			t.Errorf("expected placeholder message to be rejected: %q", msg)
		}
	}
}

func TestValidate_RejectsUngroundedCitation(t *testing.T) {
	var v Validator
	a := validAnswer()
	a.Citations = []string{"text that never appeared in any retrieved chunk"}
	if v.Validate(a, "what is cbct", testContext) {
		t.Error("expected non-verbatim citation to be rejected")
	}
}

func TestValidate_RejectsEmptyCitations(t *testing.T) {
	var v Validator
	a := validAnswer()
	a.Citations = nil
	if v.Validate(a, "what is cbct", testContext) {
		t.Error("expected answer without citations to be rejected")
	}

	a = validAnswer()
	a.Citations = []string{""}
	if v.Validate(a, "what is cbct", testContext) {
		t.Error("expected empty citation string to be rejected")
	}
}

func TestValidate_RejectsShortMessage(t *testing.T) {
	var v Validator
	a := validAnswer()
	a.Message = "Yes."
	if v.Validate(a, "is this supported", testContext) {
		t.Error("expected short message to be rejected")
	}
}

func TestValidate_RejectsUncertainty(t *testing.T) {
	var v Validator

	a := validAnswer()
	a.Message = "I'm not sure about this, but the imaging workflow might support that format."
	if v.Validate(a, "is dicom supported", testContext) {
		t.Error("expected uncertainty language to be rejected")
	}

	a = validAnswer()
	a.UncertaintyFlags = []string{"low_confidence"}
	if v.Validate(a, "what is cbct", testContext) {
		t.Error("expected flagged uncertainty to be rejected")
	}
}

func TestValidate_HowQuestionNeedsProcessLanguage(t *testing.T) {
	var v Validator

	a := validAnswer()
	a.Message = "CBCT captures detailed views of teeth and bone in dental diagnostics."
	if v.Validate(a, "how do i upload a scan", testContext) {
		t.Error("expected non-procedural answer to a how-question to be rejected")
	}

	a.Message = "First open the dashboard, then upload the scan and select the analysis profile."
	a.Citations = []string{"dental diagnostics"}
	if !v.Validate(a, "how do i upload a scan", testContext) {
		t.Error("expected procedural answer to a how-question to pass")
	}
}

func TestValidate_WhatIsQuestionNeedsSubstance(t *testing.T) {
	var v Validator
	a := validAnswer()
	a.Message = "It is a 3D dental imaging method."
	if v.Validate(a, "what is cbct", testContext) {
		t.Error("expected thin definition to be rejected")
	}
}

func TestValidate_RejectsNonAnswerKinds(t *testing.T) {
	var v Validator

	if v.Validate(nil, "q", testContext) {
		t.Error("expected nil answer to be rejected")
	}

	a := validAnswer()
	a.Kind = "handoff"
	if v.Validate(a, "q", testContext) {
		t.Error("expected handoff kind to be rejected")
	}
}
