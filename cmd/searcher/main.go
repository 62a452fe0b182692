// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/candidex"
	"github.com/poiesic/candidex/search"
)

var (
	dbPath       = flag.String("db", "./candidex_db", "path to the database directory")
	lat          = flag.Float64("lat", 0, "latitude of the search center")
	lon          = flag.Float64("lon", 0, "longitude of the search center")
	radius       = flag.Float64("radius", 0, "search radius in km (0 disables the geo filter)")
	featured     = flag.Bool("featured", false, "only featured candidates")
	sample       = flag.Bool("sample", false, "random featured sample instead of a ranked page")
	pageSize     = flag.Int("page-size", 0, "page size (0 uses the engine default)")
	offset       = flag.Int("offset", 0, "number of leading matches to skip")
	includeOlder = flag.Bool("include-older", false, "include profiles outside the recency window")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := candidex.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	engine, err := db.NewEngine()
	if err != nil {
		panic(err)
	}

	// Remaining args form the text query; none means no text filter
	request := &search.Request{
		Query:        strings.Join(flag.Args(), " "),
		FeaturedOnly: *featured,
		IncludeOlder: *includeOlder,
		PageSize:     *pageSize,
		Offset:       *offset,
	}
	if *radius > 0 {
		request.Geo = &search.GeoFilter{Lat: *lat, Lon: *lon, RadiusKm: *radius}
	}

	ctx := context.Background()
	var result *search.Result
	if *sample {
		result, err = engine.FeaturedSample(ctx, request)
	} else {
		result, err = engine.Search(ctx, request)
	}
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(result.Candidates))
	for i, hit := range result.Candidates {
		fmt.Printf("%d: '%s' (%d)[%0.3f]\n", i, hit.Candidate.FullName, hit.Candidate.Id, hit.Rank)
	}
	if result.HasMore {
		fmt.Println("More results available")
	}
}
