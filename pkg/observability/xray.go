package observability

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
)

// InstrumentAWS adds X-Ray subsegments to every AWS SDK call made with cfg.
// Only useful inside Lambda, where the runtime provides the parent segment.
func InstrumentAWS(cfg *aws.Config) {
	awsv2.AWSV2Instrumentor(&cfg.APIOptions)
}
