package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"

	"github.com/imyashkale/mcpdashboard/internal/logger"
)

// ecrAPI is the subset of the ECR client used here
type ecrAPI interface {
	DescribeImages(ctx context.Context, params *ecr.DescribeImagesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error)
}

// ECRImage is a parsed Amazon ECR image reference
type ECRImage struct {
	AccountID  string
	Region     string
	Repository string
	Tag        string
	Digest     string
}

var ecrHost = regexp.MustCompile(`^(\d{12})\.dkr\.ecr\.([a-z0-9-]+)\.amazonaws\.com$`)

// ParseECRImage parses "<account>.dkr.ecr.<region>.amazonaws.com/<repo>[:tag|@digest]".
// ok is false for references outside ECR.
func ParseECRImage(ref string) (img ECRImage, ok bool) {
	host, rest, found := strings.Cut(ref, "/")
	if !found || rest == "" {
		return ECRImage{}, false
	}
	m := ecrHost.FindStringSubmatch(host)
	if m == nil {
		return ECRImage{}, false
	}
	img.AccountID, img.Region = m[1], m[2]

	if repo, digest, hasDigest := strings.Cut(rest, "@"); hasDigest {
		img.Repository, img.Digest = repo, digest
	} else if i := strings.LastIndex(rest, ":"); i >= 0 {
		img.Repository, img.Tag = rest[:i], rest[i+1:]
	} else {
		img.Repository, img.Tag = rest, "latest"
	}
	if img.Repository == "" || (img.Tag == "" && img.Digest == "") {
		return ECRImage{}, false
	}
	return img, true
}

// ECRService checks container images against Amazon ECR before the
// backend is asked to launch them.
type ECRService struct {
	ecrClient ecrAPI
	region    string
	accountID string
}

// NewECRService creates a new ECR service
func NewECRService(cfg aws.Config, accountID string) *ECRService {
	return &ECRService{
		ecrClient: ecr.NewFromConfig(cfg),
		region:    cfg.Region,
		accountID: accountID,
	}
}

// VerifyImage returns ErrImageNotFound if ref names an image in this
// account's registry that does not exist. References to other registries,
// accounts or regions are not checked.
func (es *ECRService) VerifyImage(ctx context.Context, ref string) error {
	img, ok := ParseECRImage(ref)
	if !ok || img.AccountID != es.accountID || img.Region != es.region {
		logger.WithField("image", ref).Debugf("Skipping image verification outside this registry")
		return nil
	}

	id := types.ImageIdentifier{}
	if img.Digest != "" {
		id.ImageDigest = aws.String(img.Digest)
	} else {
		id.ImageTag = aws.String(img.Tag)
	}

	out, err := es.ecrClient.DescribeImages(ctx, &ecr.DescribeImagesInput{
		RegistryId:     aws.String(img.AccountID),
		RepositoryName: aws.String(img.Repository),
		ImageIds:       []types.ImageIdentifier{id},
	})
	if err != nil {
		var imageNotFound *types.ImageNotFoundException
		var repoNotFound *types.RepositoryNotFoundException
		if errors.As(err, &imageNotFound) || errors.As(err, &repoNotFound) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, ref)
		}
		return fmt.Errorf("failed to describe ECR image: %w", err)
	}
	if len(out.ImageDetails) == 0 {
		return fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	return nil
}
