package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_AllocateSubnetCidrs(t *testing.T) {
	tests := []struct {
		name    string
		vpc     string
		masks   []int
		want    []string
		wantErr bool
	}{
		{
			name:  "single game server subnet",
			vpc:   DEFAULT_VPC_CIDR,
			masks: []int{28},
			want:  []string{"10.0.0.0/28"},
		},
		{
			name:  "consecutive blocks",
			vpc:   DEFAULT_VPC_CIDR,
			masks: []int{28, 28, 24},
			want:  []string{"10.0.0.0/28", "10.0.0.16/28", "10.0.1.0/24"},
		},
		{
			name:  "unmasked vpc address",
			vpc:   "10.0.1.7/24",
			masks: []int{26, 26},
			want:  []string{"10.0.1.0/26", "10.0.1.64/26"},
		},
		{
			name:    "not enough space",
			vpc:     "10.0.1.0/24",
			masks:   []int{25, 25, 28},
			wantErr: true,
		},
		{
			name:    "mask too small",
			vpc:     DEFAULT_VPC_CIDR,
			masks:   []int{30},
			wantErr: true,
		},
		{
			name:    "invalid cidr",
			vpc:     "10.0.0.0",
			masks:   []int{28},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			got, err := AllocateSubnetCidrs(tt.vpc, tt.masks)
			if tt.wantErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tt.want, got)
		})
	}
}

func Test_SelectSubnets(t *testing.T) {
	assert := assert.New(t)

	a := &Subnet{Name: "a", GroupName: "GameServers"}
	b := &Subnet{Name: "b", GroupName: "Other"}
	c := &Subnet{Name: "c", GroupName: "GameServers"}

	assert.Equal(SubnetSelection{a, c}, SelectSubnets([]*Subnet{a, b, c}, "GameServers"))
	assert.Empty(SelectSubnets([]*Subnet{a, b, c}, "Missing"))
}
