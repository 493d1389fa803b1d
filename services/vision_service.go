package services

import (
	"context"
	"os"
	"strings"

	"github.com/ichchha07-wish/meal-system/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// VisionService gates meal photo uploads on the image actually
// depicting food.
type VisionService struct {
	client *rekognition.Client
}

func NewVisionService() (*VisionService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		return nil, err
	}
	return &VisionService{client: rekognition.NewFromConfig(cfg)}, nil
}

var foodLabels = map[string]bool{
	"food": true, "meal": true, "dish": true, "cuisine": true,
	"lunch": true, "dinner": true, "breakfast": true, "snack": true,
	"dessert": true, "bread": true, "rice": true, "curry": true,
}

// LooksLikeFood detects labels on a base64 data-URI image and reports
// whether any of them plausibly describes food, along with the labels
// seen.
func (v *VisionService) LooksLikeFood(base64Img string) (bool, []string, error) {
	data, _, err := utils.DecodeBase64Image(base64Img)
	if err != nil {
		return false, nil, err
	}

	out, err := v.client.DetectLabels(context.TODO(), &rekognition.DetectLabelsInput{
		Image:         &rektypes.Image{Bytes: data},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(70),
	})
	if err != nil {
		return false, nil, err
	}

	var labels []string
	found := false
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		labels = append(labels, name)
		if foodLabels[strings.ToLower(name)] {
			found = true
		}
	}
	return found, labels, nil
}
