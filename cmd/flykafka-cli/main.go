/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
FlyKafka CLI - Command Line Interface.

COMMANDS:
=========

	api-versions, versions     Ask the broker which APIs and versions it supports
	describe-topic, describe   Describe the partitions of a topic

EXAMPLES:
=========

	# List supported APIs
	flykafka-cli api-versions

	# Probe an unsupported version
	flykafka-cli api-versions --version 100

	# Describe a topic, following pagination cursors
	flykafka-cli --addr broker:9092 describe-topic orders --limit 100 --all
*/
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"

	"flykafka/internal/banner"
	"flykafka/internal/protocol"
	flycli "flykafka/pkg/cli"
	"flykafka/pkg/client"
)

const defaultAddr = "localhost:9092"

func main() {
	app := cli.NewApp()
	app.Name = "flykafka-cli"
	app.Usage = "query a FlyKafka broker over the Kafka wire protocol"
	app.Version = banner.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "addr, a",
			Value:  defaultAddr,
			Usage:  "Broker address",
			EnvVar: "FLYKAFKA_ADDR",
		},
		cli.StringFlag{
			Name:  "client-id",
			Value: "flykafka-cli",
			Usage: "Client id sent in request headers",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: 10 * time.Second,
			Usage: "Timeout for connecting and for each request",
		},
		cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("no-color") {
			flycli.SetColorsEnabled(false)
		}
		return nil
	}
	app.Commands = []cli.Command{
		cli.Command{
			Name:    "api-versions",
			Aliases: []string{"versions"},
			Usage:   "Ask the broker which APIs and versions it supports",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "version, v",
					Value: 4,
					Usage: "ApiVersions request version",
				},
			},
			Action: apiVersionsCommand,
		},
		cli.Command{
			Name:      "describe-topic",
			Aliases:   []string{"describe"},
			Usage:     "Describe the partitions of a topic",
			ArgsUsage: "<topic>",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum partitions per response (0 = no limit)",
				},
				cli.BoolFlag{
					Name:  "all",
					Usage: "Follow pagination cursors until the listing is complete",
				},
			},
			Action: describeTopicCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		flycli.Error("%v", err)
		os.Exit(1)
	}
}

// connect dials the broker named by the global flags.
func connect(c *cli.Context) (*client.Client, context.Context, context.CancelFunc, error) {
	timeout := c.GlobalDuration("timeout")
	opts := client.DefaultClientOptions()
	opts.ClientID = c.GlobalString("client-id")
	opts.ConnectTimeout = timeout
	opts.RequestTimeout = timeout

	ctx, cancel := context.WithCancel(context.Background())
	addr := c.GlobalString("addr")
	conn, err := client.Dial(ctx, addr, opts)
	if err != nil {
		cancel()
		flycli.ErrorWithHint(fmt.Sprintf("Cannot reach broker at %s", addr), "is flykafka running? set --addr or FLYKAFKA_ADDR")
		return nil, nil, nil, cli.NewExitError("", 1)
	}
	return conn, ctx, cancel, nil
}

func apiVersionsCommand(c *cli.Context) error {
	conn, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer conn.Close()

	resp, err := conn.ApiVersions(ctx, int16(c.Int("version")))
	if err != nil {
		return err
	}

	flycli.Header("ApiVersions")
	flycli.KeyValue("Broker", conn.Addr())
	flycli.KeyValue("Error code", errorCodeText(resp.ErrorCode))
	flycli.KeyValue("Throttle", fmt.Sprintf("%dms", resp.ThrottleTimeMs))
	if resp.ApiKeys.Len() == 0 {
		flycli.Warning("Broker advertised no APIs for version %d", c.Int("version"))
		return nil
	}

	rows := make([][]string, 0, resp.ApiKeys.Len())
	for _, v := range resp.ApiKeys.Items {
		rows = append(rows, []string{
			strconv.Itoa(int(v.ApiKey)),
			v.ApiKey.String(),
			strconv.Itoa(int(v.MinVersion)),
			strconv.Itoa(int(v.MaxVersion)),
		})
	}
	fmt.Println()
	flycli.Table([]string{"KEY", "NAME", "MIN", "MAX"}, rows)
	return nil
}

func describeTopicCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		flycli.ErrorWithHint("Exactly one topic name is required", "flykafka-cli describe-topic <topic>")
		return cli.NewExitError("", 1)
	}
	name := c.Args().First()

	conn, ctx, cancel, err := connect(c)
	if err != nil {
		return err
	}
	defer cancel()
	defer conn.Close()

	opts := client.DescribeOptions{Topics: []string{name}, Limit: int32(c.Int("limit"))}
	var topic *protocol.TopicResponse
	var rows [][]string
	var next *protocol.Cursor
	for {
		resp, err := conn.DescribeTopicPartitionsWithOptions(ctx, opts)
		if err != nil {
			return err
		}
		if resp.Topics.Len() == 0 {
			return fmt.Errorf("broker returned no topics")
		}
		if topic == nil {
			topic = &resp.Topics.Items[0]
		}
		for _, p := range resp.Topics.Items[0].Partitions.Items {
			rows = append(rows, []string{
				strconv.Itoa(int(p.PartitionIndex)),
				strconv.Itoa(int(p.LeaderID)),
				strconv.Itoa(int(p.LeaderEpoch)),
				joinIDs(p.ReplicaNodes),
				joinIDs(p.IsrNodes),
			})
		}
		next = resp.NextCursor.Value
		if next == nil || !c.Bool("all") {
			break
		}
		opts.Cursor = next
	}

	flycli.Header("Topic " + name)
	flycli.KeyValue("Error code", errorCodeText(topic.ErrorCode))
	if topic.ErrorCode != protocol.ErrorNone {
		return nil
	}
	flycli.KeyValue("Topic ID", topic.TopicID.String())
	flycli.KeyValue("Internal", bool(topic.IsInternal))
	flycli.KeyValue("Authorized operations", fmt.Sprintf("0x%08x", int32(topic.TopicAuthorizedOperations)))
	fmt.Println()
	flycli.Table([]string{"PARTITION", "LEADER", "EPOCH", "REPLICAS", "ISR"}, rows)
	if next != nil {
		fmt.Println()
		flycli.Hint("More partitions available from %d; rerun with --all", next.PartitionIndex)
	}
	return nil
}

func errorCodeText(code protocol.ErrorCode) string {
	text := fmt.Sprintf("%d (%s)", int16(code), code.Title())
	return flycli.Status(text, code == protocol.ErrorNone)
}

func joinIDs(ids protocol.Int32Array) string {
	parts := make([]string, 0, ids.Len())
	for _, id := range ids.Items {
		parts = append(parts, strconv.Itoa(int(id)))
	}
	return strings.Join(parts, ",")
}
