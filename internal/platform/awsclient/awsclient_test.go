package awsclient

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromConfig(t *testing.T) {
	Convey("Given a resolved configuration", t, func() {
		cfg := aws.Config{Region: "eu-west-1"}

		Convey("When an endpoint override is set", func() {
			c := FromConfig(cfg, Settings{Endpoint: "http://localhost:4566"})

			Convey("Then every client targets it", func() {
				So(aws.ToString(c.S3.Options().BaseEndpoint), ShouldEqual, "http://localhost:4566")
				So(c.S3.Options().UsePathStyle, ShouldBeTrue)
				So(aws.ToString(c.DynamoDB.Options().BaseEndpoint), ShouldEqual, "http://localhost:4566")
				So(aws.ToString(c.EventBridge.Options().BaseEndpoint), ShouldEqual, "http://localhost:4566")
				So(c.DynamoDB.Options().Region, ShouldEqual, "eu-west-1")
			})
		})

		Convey("When per-service overrides are set next to the shared one", func() {
			c := FromConfig(cfg, Settings{
				Endpoint:         "http://localhost:4566",
				S3Endpoint:       "http://s3.local:9000",
				DynamoDBEndpoint: "http://dynamo.local:8000",
			})

			Convey("Then each service override wins for its own client only", func() {
				So(aws.ToString(c.S3.Options().BaseEndpoint), ShouldEqual, "http://s3.local:9000")
				So(c.S3.Options().UsePathStyle, ShouldBeTrue)
				So(aws.ToString(c.DynamoDB.Options().BaseEndpoint), ShouldEqual, "http://dynamo.local:8000")
				So(aws.ToString(c.EventBridge.Options().BaseEndpoint), ShouldEqual, "http://localhost:4566")
			})
		})

		Convey("When only the events override is set", func() {
			c := FromConfig(cfg, Settings{EventsEndpoint: "http://events.local:4566"})

			Convey("Then the other clients keep the default resolver", func() {
				So(aws.ToString(c.EventBridge.Options().BaseEndpoint), ShouldEqual, "http://events.local:4566")
				So(c.S3.Options().BaseEndpoint, ShouldBeNil)
				So(c.DynamoDB.Options().BaseEndpoint, ShouldBeNil)
			})
		})

		Convey("When no override is set", func() {
			c := FromConfig(cfg, Settings{})

			Convey("Then the default resolver is used", func() {
				So(c.S3.Options().BaseEndpoint, ShouldBeNil)
				So(c.S3.Options().UsePathStyle, ShouldBeFalse)
				So(c.EventBridge.Options().BaseEndpoint, ShouldBeNil)
			})
		})
	})
}
