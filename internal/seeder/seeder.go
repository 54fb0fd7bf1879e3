// Package seeder generates synthetic Wazuh-style alerts and matching log
// lines for local development of the dashboard.
package seeder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// TimestampLayout matches the Wazuh manager's alert timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000-0700"

// Options controls generation.
type Options struct {
	// Count is the number of alerts.
	Count int
	// NoiseLines is the number of unrelated log lines mixed in.
	NoiseLines int
	// Spread is how far back from Now alert timestamps reach.
	Spread time.Duration
	Now    time.Time
	// Seed makes output reproducible; zero seeds from the clock.
	Seed int64
}

// Dataset is generated output, one JSON alert per line and free-text logs.
type Dataset struct {
	Alerts []string
	Logs   []string
}

type ruleTemplate struct {
	id          string
	level       int
	description string
	groups      []string
	eventID     string
	// log renders a related syslog-style line; args are host, user, ip.
	log string
}

var rules = []ruleTemplate{
	{"60122", 5, "Logon failure - Unknown user or bad password", []string{"windows", "authentication_failed"}, "4625",
		"%s Microsoft-Windows-Security-Auditing: An account failed to log on. Account Name: %s Source Network Address: %s"},
	{"60204", 10, "Multiple Windows Logon Failures", []string{"windows", "authentication_failures"}, "4625",
		"%s Microsoft-Windows-Security-Auditing: Multiple logon failures for %s from %s"},
	{"60106", 3, "Windows Logon Success", []string{"windows", "authentication_success"}, "4624",
		"%s Microsoft-Windows-Security-Auditing: An account was successfully logged on. Account Name: %s Source Network Address: %s"},
	{"5712", 10, "sshd: brute force trying to get access to the system", []string{"syslog", "sshd", "authentication_failures"}, "",
		"%s sshd[2213]: Failed password for invalid user %s from %s port 52144 ssh2"},
	{"5715", 3, "sshd: authentication success", []string{"syslog", "sshd", "authentication_success"}, "",
		"%s sshd[2290]: Accepted publickey for %s from %s port 50022 ssh2"},
	{"60154", 8, "Administrators group changed", []string{"windows", "group_changed"}, "4732",
		"%s Microsoft-Windows-Security-Auditing: A member was added to Administrators. Member: %s Caller address: %s"},
	{"92213", 12, "Executable file dropped in folder commonly used by malware", []string{"windows", "sysmon"}, "11",
		"%s Sysmon: FileCreate by %s C:\\Users\\Public\\svc.exe remote %s"},
	{"31103", 7, "SQL injection attempt", []string{"web", "attack", "sql_injection"}, "",
		"%s nginx: GET /login.php?user=%s'%%20OR%%201=1 from %s 403"},
}

// Generate builds a dataset. Alerts are in ascending time order.
func Generate(opts Options) Dataset {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	spread := opts.Spread
	if spread <= 0 {
		spread = 24 * time.Hour
	}

	hosts := make([]string, 4)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("WS-%s", faker.LetterN(5))
	}

	var ds Dataset
	for i := 0; i < opts.Count; i++ {
		rule := rules[faker.Number(0, len(rules)-1)]
		host := hosts[faker.Number(0, len(hosts)-1)]
		user := faker.Username()
		ip := faker.IPv4Address()

		offset := time.Duration(float64(spread) * float64(opts.Count-i) / float64(opts.Count+1))
		ts := now.Add(-offset)

		alert := map[string]interface{}{
			"timestamp": ts.Format(TimestampLayout),
			"id":        fmt.Sprintf("%d.%d", ts.Unix(), faker.Number(100000, 999999)),
			"rule": map[string]interface{}{
				"id":          rule.id,
				"level":       rule.level,
				"description": rule.description,
				"groups":      rule.groups,
			},
			"agent": map[string]interface{}{
				"id":   fmt.Sprintf("%03d", faker.Number(1, 120)),
				"name": host,
				"ip":   faker.IPv4Address(),
			},
			"manager":  map[string]interface{}{"name": "wazuh-manager"},
			"location": "EventChannel",
			"data": map[string]interface{}{
				"win": map[string]interface{}{
					"system": map[string]interface{}{
						"eventID":  rule.eventID,
						"computer": host,
					},
					"eventdata": map[string]interface{}{
						"IpAddress":      ip,
						"TargetUserName": user,
					},
				},
			},
		}

		line, err := json.Marshal(alert)
		if err != nil {
			continue
		}
		ds.Alerts = append(ds.Alerts, string(line))

		logTS := ts.Format(time.Stamp)
		ds.Logs = append(ds.Logs, fmt.Sprintf("%s "+rule.log, logTS, host, user, ip))
	}

	for i := 0; i < opts.NoiseLines; i++ {
		ts := now.Add(-time.Duration(faker.Number(0, int(spread/time.Second))) * time.Second)
		ds.Logs = append(ds.Logs, fmt.Sprintf("%s %s %s: %s",
			ts.Format(time.Stamp), faker.DomainName(), faker.RandomString([]string{"systemd", "kernel", "cron", "dhclient"}), faker.HackerPhrase()))
	}

	return ds
}

// WriteLines writes lines to path, appending when appendMode is set.
func WriteLines(path string, lines []string, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
