package main

import (
	"os"
	"path/filepath"

	"github.com/decentralizedrights/portal/internal/domain"
	"github.com/decentralizedrights/portal/pkg/api/drp"
	"github.com/urfave/cli/v2"
)

func (s *srv) submitActivity(ct *cli.Context) error {
	input, closeFile, err := s.activityInput(ct)
	if err != nil {
		return err
	}
	defer closeFile()

	result, err := s.proofDomain.SubmitActivity(s.ctx, input)
	if err != nil {
		return err
	}

	return s.print(ct, result)
}

func (s *srv) verifyActivity(ct *cli.Context) error {
	input, closeFile, err := s.activityInput(ct)
	if err != nil {
		return err
	}
	defer closeFile()

	result, err := s.proofDomain.VerifyActivity(s.ctx, input)
	if err != nil {
		return err
	}

	return s.print(ct, result)
}

func (s *srv) preVerifyActivity(ct *cli.Context) error {
	cid, err := arg(ct, 0, "media cid")
	if err != nil {
		return err
	}

	claim := drp.ActivityClaim{
		Title:       ct.String("title"),
		Description: ct.String("description"),
		Location:    ct.String("location"),
		Timestamp:   ct.String("timestamp"),
		MediaCID:    cid,
	}
	if w, err := s.wallets.Current(s.ctx); err == nil {
		claim.ActorID = w.Address
	}

	verdict, err := s.proofDomain.PreVerifyActivity(s.ctx, claim)
	if err != nil {
		return err
	}

	return s.print(ct, verdict)
}

func (s *srv) submitStatus(ct *cli.Context) error {
	input, closeFile, err := s.statusInput(ct)
	if err != nil {
		return err
	}
	defer closeFile()

	result, err := s.proofDomain.SubmitStatus(s.ctx, input)
	if err != nil {
		return err
	}

	return s.print(ct, result)
}

func (s *srv) verifyStatus(ct *cli.Context) error {
	input, closeFile, err := s.statusInput(ct)
	if err != nil {
		return err
	}
	defer closeFile()

	result, err := s.proofDomain.VerifyStatus(s.ctx, input)
	if err != nil {
		return err
	}

	return s.print(ct, result)
}

func (s *srv) preVerifyStatus(ct *cli.Context) error {
	cid, err := arg(ct, 0, "credential cid")
	if err != nil {
		return err
	}

	claim := drp.StatusClaim{
		Category:      ct.String("category"),
		Issuer:        ct.String("issuer"),
		ReferenceCode: ct.String("reference"),
		CredentialCID: cid,
	}
	if w, err := s.wallets.Current(s.ctx); err == nil {
		claim.ActorID = w.Address
	}

	verdict, err := s.proofDomain.PreVerifyStatus(s.ctx, claim)
	if err != nil {
		return err
	}

	return s.print(ct, verdict)
}

func (s *srv) statusProfile(ct *cli.Context) error {
	userID, err := optionalArg(ct, 0, s.currentAddress)
	if err != nil {
		return err
	}

	profile, err := s.drpEndpoint.GetStatusProfile(s.ctx, userID)
	if err != nil {
		return err
	}

	return s.print(ct, profile)
}

func (s *srv) getSubmission(ct *cli.Context) error {
	id, err := arg(ct, 0, "submission id")
	if err != nil {
		return err
	}

	submission, err := s.drpEndpoint.GetSubmission(s.ctx, id)
	if err != nil {
		return err
	}

	return s.print(ct, submission)
}

func (s *srv) ledger(ct *cli.Context) error {
	records, err := s.proofDomain.Ledger(s.ctx)
	if err != nil {
		return err
	}

	return s.print(ct, records)
}

func (s *srv) activityInput(ct *cli.Context) (domain.ActivityInput, func(), error) {
	media, closeFile, err := openEvidence(ct, "media file")
	if err != nil {
		return domain.ActivityInput{}, nil, err
	}

	return domain.ActivityInput{
		Title:       ct.String("title"),
		Description: ct.String("description"),
		Location:    ct.String("location"),
		Timestamp:   ct.String("timestamp"),
		Media:       media,
	}, closeFile, nil
}

func (s *srv) statusInput(ct *cli.Context) (domain.StatusInput, func(), error) {
	credential, closeFile, err := openEvidence(ct, "credential file")
	if err != nil {
		return domain.StatusInput{}, nil, err
	}

	return domain.StatusInput{
		Category:      ct.String("category"),
		Issuer:        ct.String("issuer"),
		ReferenceCode: ct.String("reference"),
		Credential:    credential,
	}, closeFile, nil
}

func openEvidence(ct *cli.Context, name string) (domain.Evidence, func(), error) {
	path, err := arg(ct, 0, name)
	if err != nil {
		return domain.Evidence{}, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Evidence{}, nil, err
	}

	return domain.Evidence{Name: filepath.Base(path), Content: f}, func() { f.Close() }, nil
}
