package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestCheckImage(t *testing.T) {
	check := ImageCheck{Stack: "GameServers", Repository: "minecraft", Tag: "1.20"}
	input := &ecr.DescribeImagesInput{
		RepositoryName: aws.String("minecraft"),
		ImageIds:       []types.ImageIdentifier{{ImageTag: aws.String("1.20")}},
	}
	tests := []struct {
		name    string
		mocks   func(mockEcr *MockEcrClient)
		want    bool
		wantErr bool
	}{
		{
			name: "image is pushed",
			mocks: func(mockEcr *MockEcrClient) {
				mockEcr.EXPECT().DescribeImages(gomock.Any(), input).Return(&ecr.DescribeImagesOutput{
					ImageDetails: []types.ImageDetail{{RepositoryName: aws.String("minecraft"), ImageTags: []string{"1.20"}}},
				}, nil)
			},
			want: true,
		},
		{
			name: "image not pushed",
			mocks: func(mockEcr *MockEcrClient) {
				mockEcr.EXPECT().DescribeImages(gomock.Any(), input).
					Return(nil, &types.ImageNotFoundException{Message: aws.String("The image with imageId {imageTag:'1.20'} does not exist")})
			},
		},
		{
			name: "repository not created",
			mocks: func(mockEcr *MockEcrClient) {
				mockEcr.EXPECT().DescribeImages(gomock.Any(), input).
					Return(nil, &types.RepositoryNotFoundException{Message: aws.String("The repository with name 'minecraft' does not exist")})
			},
		},
		{
			name: "access denied",
			mocks: func(mockEcr *MockEcrClient) {
				mockEcr.EXPECT().DescribeImages(gomock.Any(), input).Return(nil, apiError("AccessDeniedException", "not authorized"))
			},
			wantErr: true,
		},
		{
			name: "transport error",
			mocks: func(mockEcr *MockEcrClient) {
				mockEcr.EXPECT().DescribeImages(gomock.Any(), input).Return(nil, errors.New("connection reset"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			ctrl := gomock.NewController(t)
			mockEcr := NewMockEcrClient(ctrl)
			tt.mocks(mockEcr)

			got, err := CheckImage(context.Background(), mockEcr, check)
			if tt.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}
