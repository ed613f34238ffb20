package hostbridge

// quantileSet estimates several quantiles of one observation stream in
// constant space, using the P-Square algorithm (Jain & Chlamtac, 1985,
// "The P² Algorithm for Dynamic Calculation of Quantiles and Histograms
// Without Storing Observations"). Updates and reads are O(1) per tracked
// quantile. Not safe for concurrent use; the metrics mutex guards it.
type quantileSet struct {
	marks []*p2marker
	sum   float64
	max   float64
	count int
}

func newQuantileSet(quantiles ...float64) *quantileSet {
	s := &quantileSet{marks: make([]*p2marker, len(quantiles))}
	for i, p := range quantiles {
		s.marks[i] = newP2Marker(p)
	}
	return s
}

func (s *quantileSet) observe(x float64) {
	s.count++
	s.sum += x
	if s.count == 1 || x > s.max {
		s.max = x
	}
	for _, m := range s.marks {
		m.observe(x)
	}
}

// quantile returns the estimate for the i-th tracked quantile.
func (s *quantileSet) quantile(i int) float64 {
	if i < 0 || i >= len(s.marks) {
		return 0
	}
	return s.marks[i].estimate()
}

func (s *quantileSet) maximum() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max
}

func (s *quantileSet) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// p2marker estimates one quantile. Five markers track the minimum, the
// target quantile, the midpoints on either side of it, and the maximum;
// marker heights are nudged toward their ideal positions per observation,
// parabolically where the neighborhood allows it, linearly otherwise.
type p2marker struct {
	p     float64
	q     [5]float64 // marker heights
	n     [5]int     // marker positions
	np    [5]float64 // desired marker positions
	dn    [5]float64 // desired position increments
	seed  [5]float64 // first five observations, pre-algorithm
	count int
}

func newP2Marker(p float64) *p2marker {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return &p2marker{p: p, dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1}}
}

func (m *p2marker) observe(x float64) {
	m.count++

	if m.count <= 5 {
		m.seed[m.count-1] = x
		if m.count == 5 {
			sortFive(&m.seed)
			m.q = m.seed
			for i := range m.n {
				m.n[i] = i
			}
			m.np = [5]float64{0, 2 * m.p, 4 * m.p, 2 + 2*m.p, 4}
		}
		return
	}

	// Locate the cell k with q[k] <= x < q[k+1], extending the extremes.
	var k int
	switch {
	case x < m.q[0]:
		m.q[0] = x
		k = 0
	case x >= m.q[4]:
		m.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if m.q[k] <= x && x < m.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		m.n[i]++
	}
	for i := range m.np {
		m.np[i] += m.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := m.np[i] - float64(m.n[i])
		if (d >= 1 && m.n[i+1]-m.n[i] > 1) || (d <= -1 && m.n[i-1]-m.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			if h := m.parabolic(i, sign); m.q[i-1] < h && h < m.q[i+1] {
				m.q[i] = h
			} else {
				m.q[i] = m.linear(i, sign)
			}
			m.n[i] += sign
		}
	}
}

func (m *p2marker) parabolic(i, d int) float64 {
	df := float64(d)
	ni := float64(m.n[i])
	lo := float64(m.n[i-1])
	hi := float64(m.n[i+1])
	return m.q[i] + df/(hi-lo)*((ni-lo+df)*(m.q[i+1]-m.q[i])/(hi-ni)+(hi-ni-df)*(m.q[i]-m.q[i-1])/(ni-lo))
}

func (m *p2marker) linear(i, d int) float64 {
	if d == 1 {
		return m.q[i] + (m.q[i+1]-m.q[i])/float64(m.n[i+1]-m.n[i])
	}
	return m.q[i] - (m.q[i]-m.q[i-1])/float64(m.n[i]-m.n[i-1])
}

func (m *p2marker) estimate() float64 {
	if m.count == 0 {
		return 0
	}
	if m.count < 5 {
		seed := m.seed
		sortFirst(&seed, m.count)
		i := int(float64(m.count-1) * m.p)
		return seed[i]
	}
	return m.q[2]
}

func sortFive(a *[5]float64) {
	sortFirst(a, 5)
}

// sortFirst insertion-sorts the first n elements.
func sortFirst(a *[5]float64, n int) {
	for i := 1; i < n; i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
