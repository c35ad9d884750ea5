package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	sc "github.com/dmitrijs2005/resourcehub/internal/server/config"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const avatarURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// AvatarUpload is a presigned upload target for an account avatar.
type AvatarUpload struct {
	Key string
	URL string
}

// AvatarService hands out presigned S3 PUT URLs for avatars and records
// the object key on the account.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewAvatarService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, l logging.Logger) *AvatarService {
	return &AvatarService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      l.With("module", "avatar_service"),
	}
}

func avatarKey(accountID string) string {
	return fmt.Sprintf("avatars/%s/%v", accountID, uuid.New())
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL presigns a PUT for a new avatar object of accountID and stores
// its key on the account.
func (s *AvatarService) UploadURL(ctx context.Context, accountID string) (*AvatarUpload, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := avatarKey(accountID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(avatarURLValidity))
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Accounts(s.db).SetAvatarKey(ctx, accountID, key); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "avatar upload url issued", "account_id", accountID)
	return &AvatarUpload{Key: key, URL: req.URL}, nil
}
