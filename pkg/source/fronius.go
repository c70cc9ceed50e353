package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sunwarden/sunwarden/pkg/common"
	"github.com/sunwarden/sunwarden/pkg/types"
)

const (
	froniusPowerFlowPath = "/solar_api/v1/GetPowerFlowRealtimeData.fcgi"
	froniusVersionPath   = "/solar_api/GetAPIVersion.cgi"
)

// Fronius implements the Provider interface against a Fronius inverter's
// Solar API on the local network. It may fail or time out whenever the
// inverter is unreachable.
type Fronius struct {
	client *http.Client
	// probeClient uses a much shorter timeout so health checks stay cheap.
	probeClient *http.Client
	baseURL     string
}

func newFronius(host string, port int) *Fronius {
	return &Fronius{
		client:      common.HTTPClient(10 * time.Second),
		probeClient: common.HTTPClient(3 * time.Second),
		baseURL:     fmt.Sprintf("http://%s:%d", host, port),
	}
}

type powerFlowReply struct {
	Body struct {
		Data struct {
			Site struct {
				PPV   *float64 `json:"P_PV"`
				PLoad *float64 `json:"P_Load"`
				PGrid *float64 `json:"P_Grid"`
			} `json:"Site"`
		} `json:"Data"`
	} `json:"Body"`
}

// Sample fetches the current power flow from the inverter.
func (f *Fronius) Sample(ctx context.Context) (types.PowerSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+froniusPowerFlowPath, nil)
	if err != nil {
		return types.PowerSample{}, fmt.Errorf("failed to build power flow request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return types.PowerSample{}, fmt.Errorf("power flow request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.PowerSample{}, fmt.Errorf("power flow request returned status %d", resp.StatusCode)
	}

	var reply powerFlowReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return types.PowerSample{}, fmt.Errorf("failed to decode power flow reply: %w", err)
	}

	site := reply.Body.Data.Site
	sample := types.PowerSample{Timestamp: time.Now()}
	if site.PPV != nil {
		sample.ProductionWatts = *site.PPV
	}
	if site.PLoad != nil {
		// the Solar API reports load as a negative flow out of the site
		load := *site.PLoad
		if load < 0 {
			load = -load
		}
		sample.LoadWatts = load
	}
	if site.PGrid != nil {
		sample.GridWatts = *site.PGrid
	} else {
		sample.GridWatts = sample.LoadWatts - sample.ProductionWatts
	}
	return sample, nil
}

// HealthCheck probes the inverter's API version endpoint, which responds even
// when no production data is available.
func (f *Fronius) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+froniusVersionPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build version request: %w", err)
	}

	resp, err := f.probeClient.Do(req)
	if err != nil {
		return fmt.Errorf("inverter unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inverter version endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
